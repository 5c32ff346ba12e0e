// Package deploy stages the call-flow, handler and bot artifacts next to a
// CDK app and runs the CDK CLI against them.
package deploy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// DefaultArtifacts are the files the voice outbound stack expects.
var DefaultArtifacts = []string{
	"voice_outbound_llm_flow.json",
	"voice_outbound_llm_lambda.zip",
	"voice_outbound_llm_lex.zip",
}

// ArtifactStatus reports whether one artifact exists.
type ArtifactStatus struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
}

// Check reports presence of each artifact under dir.
func Check(dir string, artifacts []string) []ArtifactStatus {
	return lo.Map(artifacts, func(name string, _ int) ArtifactStatus {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		return ArtifactStatus{Name: name, Path: path, Exists: err == nil && !info.IsDir()}
	})
}

// Request describes one deployment.
type Request struct {
	TemplateDir  string   // CDK app directory (app.py, cdk.json, ...)
	ArtifactsDir string   // Directory holding the artifacts
	Artifacts    []string // Artifact file names; DefaultArtifacts when empty
	StackName    string
	Region       string
	Profile      string // Optional AWS profile
}

// Result is the outcome of a deployment.
type Result struct {
	Success bool   `json:"success"`
	Stdout  string `json:"stdout"`
	Stderr  string `json:"stderr"`
}

// Executor runs one external command.
type Executor interface {
	Run(ctx context.Context, dir string, env []string, name string, args ...string) (stdout, stderr string, err error)
}

// ExecExecutor runs commands with os/exec.
type ExecExecutor struct{}

func (ExecExecutor) Run(ctx context.Context, dir string, env []string, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// Deployer drives the CDK CLI.
type Deployer struct {
	exec   Executor
	binary string
	log    *zap.SugaredLogger
}

// NewDeployer creates a Deployer; a nil executor uses os/exec.
func NewDeployer(executor Executor, binary string, log *zap.SugaredLogger) *Deployer {
	if executor == nil {
		executor = ExecExecutor{}
	}
	if binary == "" {
		binary = "cdk"
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Deployer{exec: executor, binary: binary, log: log}
}

// Deploy stages the template and artifacts in a temporary directory, then
// runs bootstrap and deploy. Command failures are reported in the Result,
// not as an error; the error covers local staging problems only.
func (d *Deployer) Deploy(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.TemplateDir) == "" {
		return Result{}, errors.New("template directory is required")
	}
	if strings.TrimSpace(req.StackName) == "" {
		return Result{}, errors.New("stack name is required")
	}
	if strings.TrimSpace(req.Region) == "" {
		return Result{}, errors.New("region is required")
	}
	artifacts := req.Artifacts
	if len(artifacts) == 0 {
		artifacts = DefaultArtifacts
	}

	workDir, err := os.MkdirTemp("", "obcall-deploy-")
	if err != nil {
		return Result{}, fmt.Errorf("create staging directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	if err := copyTree(req.TemplateDir, workDir); err != nil {
		return Result{}, fmt.Errorf("stage template: %w", err)
	}
	for _, st := range Check(req.ArtifactsDir, artifacts) {
		if !st.Exists {
			d.log.Debugw("artifact missing, skipping", "artifact", st.Path)
			continue
		}
		if err := copyFile(st.Path, filepath.Join(workDir, st.Name)); err != nil {
			return Result{}, fmt.Errorf("stage artifact %s: %w", st.Name, err)
		}
	}

	env := []string{"AWS_DEFAULT_REGION=" + req.Region}
	if req.Profile != "" {
		env = append(env, "AWS_PROFILE="+req.Profile)
	}

	d.log.Debugw("cdk bootstrap", "dir", workDir, "region", req.Region)
	stdout, stderr, err := d.exec.Run(ctx, workDir, env, d.binary, "bootstrap")
	if err != nil {
		return Result{Success: false, Stdout: stdout, Stderr: "bootstrap failed: " + lo.CoalesceOrEmpty(stderr, err.Error())}, nil
	}

	d.log.Debugw("cdk deploy", "stack", req.StackName)
	stdout, stderr, err = d.exec.Run(ctx, workDir, env, d.binary, "deploy", req.StackName, "--require-approval", "never")
	if err != nil {
		return Result{Success: false, Stdout: stdout, Stderr: lo.CoalesceOrEmpty(stderr, err.Error())}, nil
	}
	return Result{Success: true, Stdout: stdout, Stderr: stderr}, nil
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

package cli

import (
	"errors"
	"fmt"

	"github.com/vburojevic/obcall/internal/domain"
	"github.com/vburojevic/obcall/internal/output"
)

// outputErrorCommon normalizes error emission across commands, respecting
// ndjson vs text formats so scripts always get machine-readable failures.
func outputErrorCommon(globals *Globals, code, message string, hint ...string) error {
	if globals != nil && globals.Format == "ndjson" {
		output.NewNDJSONWriter(globals.Stdout).WriteError(code, message, hint...)
	} else if globals != nil {
		fmt.Fprintf(globals.Stderr, "Error [%s]: %s", code, message)
		if len(hint) > 0 && hint[0] != "" {
			fmt.Fprintf(globals.Stderr, " (hint: %s)", hint[0])
		}
		fmt.Fprintln(globals.Stderr)
	}
	return errors.New(message)
}

// outputDomainError reports err under the code for its kind and returns err
// unchanged so callers can still inspect it.
func outputDomainError(globals *Globals, err error) error {
	if err == nil {
		return nil
	}
	if domain.IsValidation(err) {
		outputErrorCommon(globals, "VALIDATION_ERROR", err.Error(), "fix the input and retry")
		return err
	}
	if errors.Is(err, domain.ErrNoSession) {
		outputErrorCommon(globals, "NO_SESSION", err.Error(), "run 'obcall call' first")
		return err
	}
	if domain.IsState(err) {
		outputErrorCommon(globals, "STATE_ERROR", err.Error())
		return err
	}
	if pe, ok := domain.AsProvider(err); ok {
		code, hint := providerErrorCode(pe)
		if globals != nil && globals.Format == "ndjson" {
			output.NewNDJSONWriter(globals.Stdout).WriteProviderError(code, pe, hint)
		} else {
			outputErrorCommon(globals, code, pe.Error(), hint)
		}
		return err
	}
	outputErrorCommon(globals, "INTERNAL_ERROR", err.Error())
	return err
}

func providerErrorCode(pe *domain.ProviderError) (code, hint string) {
	switch pe.Kind {
	case domain.KindTimeout:
		return "PROVIDER_TIMEOUT", "the request may still have been applied; refresh before resubmitting"
	case domain.KindRetryable:
		return "PROVIDER_RETRYABLE", "retry after a short delay"
	default:
		return "PROVIDER_ERROR", ""
	}
}

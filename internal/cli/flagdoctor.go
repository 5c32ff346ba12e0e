package cli

// validateFlags centralizes common flag combinations to keep behavior consistent.
func validateFlags(globals *Globals, toStdout bool) error {
	// raw CSV on stdout cannot share the stream with ndjson events
	if toStdout && globals != nil && globals.Format == "ndjson" && !globals.Quiet {
		return outputErrorCommon(globals, "INVALID_FLAGS", "--output - mixes CSV with ndjson events", "add --quiet or write to a file")
	}
	// quiet + text hides the record table headline only; ndjson is the scripted path
	if globals != nil && globals.Format == "text" && globals.Quiet && globals.Verbose {
		return outputErrorCommon(globals, "INVALID_FLAGS", "--quiet and --verbose cannot be combined", "drop one of them")
	}
	return nil
}

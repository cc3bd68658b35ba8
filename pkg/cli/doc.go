/*
Package cli provides command-line interface utilities for Ganymede.

The cli package includes output formatters, error classification, and
signal handling used by the ganymede command.

Output Formatting:

The cli package supports multiple output formats (text, JSON, CSV) for
displaying command results:

	format, err := cli.ParseFormat(flags.format)
	if err != nil {
		return cli.NewUsageError("list", err.Error())
	}
	formatter := cli.NewFormatter(format)
	if err := formatter.FormatTo(os.Stdout, report); err != nil {
		return err
	}

Report types render themselves as text via fmt.Stringer and as CSV via
the CSVMarshaler interface.

Error Classification:

Errors returned from commands map to process exit codes. ConfigError
and UsageError exit with code 2, every other error with code 1:

	os.Exit(cli.ExitCode(err))

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	// Use ctx for operations that should be cancelled on shutdown
*/
package cli

// Package output provides structured output and error reporting for bmadflow.
//
// Every command writes through a Printer, which switches between
// human-readable and JSON output based on the --json flag and TTY detection:
//
//	printer := output.NewPrinter(cmd.OutOrStdout(), jsonMode, isTTY)
//	printer.Success(map[string]any{"message": "Workflow completed"})
//	printer.Error(err)
//	printer.Markdown(instructions)
//
// # Errors
//
// Failures from the orchestration core are *ExitError values carrying a Kind
// and an exit code:
//
//	output.KindNotInitialized           // 1: no state document for the project
//	output.KindUnknownIdentifier        // 1: unknown workflow or agent id
//	output.KindPreconditionViolation    // 3: active workflow, missing prerequisites, duplicate save
//	output.KindAlreadyInitialized       // 3: init called twice
//	output.KindContentError             // 2: unreadable or malformed bundle content
//	output.KindStructuralIncompleteness // 2: project scaffolding missing
//
// In JSON mode errors are written as {"error": "...", "code": N, "kind": "..."}.
package output

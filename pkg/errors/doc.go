// Package errors provides the error types shared by pipcheck commands.
//
//   - ExitError: command exit with a specific exit code
//   - PartialSuccessError: a run finished but some variants failed or errored
//   - StepError: a subprocess step (venv, install, reinstall, prepare) did not
//     complete, which the runner reports as an execution error rather than an
//     assertion mismatch
//
// Exit Codes:
//
// Standard exit codes are defined for scripting integration:
//   - ExitSuccess (0): every variant passed
//   - ExitPartialFailure (1): the run completed with failing or errored variants
//   - ExitFailure (2): the run could not start (preflight, template environment)
//   - ExitConfigError (3): the suite file is invalid
package errors

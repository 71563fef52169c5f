package mockjudge

import (
	"regexp"
	"strings"

	"contest_judge/internal/judge"
)

// Markers that force a specific outcome.
const (
	MarkerCompileError = "#compile_error"
	MarkerRuntimeError = "#runtime_error"
	MarkerTimeLimit    = "#time_limit"
	MarkerEchoStdin    = "#echo_stdin"
)

type Submission struct {
	SourceCode string `json:"source_code"`
	LanguageID int    `json:"language_id"`
	Stdin      string `json:"stdin"`
}

var (
	printCall = regexp.MustCompile(`(?:System\.out\.println|console\.log|printf|print|puts)\s*\(\s*(?:"([^"]*)"|'([^']*)')`)
	coutCall  = regexp.MustCompile(`cout\s*<<\s*"([^"]*)"`)
)

// Simulate produces a terminal result without running anything.
func Simulate(token string, sub Submission) *judge.ExecutionResult {
	res := &judge.ExecutionResult{Token: token}
	elapsed, mem := 0.01, 1024.0
	res.Time, res.Memory = &elapsed, &mem

	switch {
	case strings.Contains(sub.SourceCode, MarkerCompileError):
		res.StatusID, res.StatusDescription = judge.StatusCompilationError, "Compilation Error"
		res.CompileOutput = "main: error: simulated compilation failure"
		res.Time, res.Memory = nil, nil
	case strings.Contains(sub.SourceCode, MarkerRuntimeError):
		res.StatusID, res.StatusDescription = judge.StatusRuntimeErrorSIGSEGV, "Runtime Error (SIGSEGV)"
		res.Stderr = "Segmentation fault"
	case strings.Contains(sub.SourceCode, MarkerTimeLimit):
		res.StatusID, res.StatusDescription = judge.StatusTimeLimitExceeded, "Time Limit Exceeded"
		limit := 5.0
		res.Time = &limit
	case strings.Contains(sub.SourceCode, MarkerEchoStdin):
		res.StatusID, res.StatusDescription = judge.StatusAccepted, "Accepted"
		res.Stdout = sub.Stdin
	default:
		res.StatusID, res.StatusDescription = judge.StatusAccepted, "Accepted"
		res.Stdout = printedLiterals(sub.SourceCode)
	}
	return res
}

func printedLiterals(src string) string {
	var lines []string
	for _, m := range printCall.FindAllStringSubmatch(src, -1) {
		if m[1] != "" {
			lines = append(lines, m[1])
		} else {
			lines = append(lines, m[2])
		}
	}
	for _, m := range coutCall.FindAllStringSubmatch(src, -1) {
		lines = append(lines, m[1])
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

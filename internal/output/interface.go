package output

// LoggerInterface is the console logger the harness components accept, so
// tests can capture or silence their output.
type LoggerInterface interface {
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
	Debug(format string, args ...interface{})
	Success(format string, args ...interface{})
	Println(format string, args ...interface{})

	SetVerbose(verbose bool)
	SetNoColor(noColor bool)
	IsVerbose() bool

	// PrintRequestError reports a failed request against the node.
	PrintRequestError(info *RequestErrorInfo)
	// PrintFatal reports a node start that was abandoned.
	PrintFatal(title string, err error)
}

var _ LoggerInterface = (*Logger)(nil)

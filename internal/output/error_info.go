package output

// RequestErrorInfo contains diagnostic information for a failed HTTP request
// against the node under test.
type RequestErrorInfo struct {
	Verb              string // HTTP verb (GET, POST, PUT)
	URL               string // Full request URL
	Status            int    // Response status, 0 when no response arrived
	Nethash           string // Network hash sent with the request
	ConnectionRefused bool   // Nothing is listening at URL
	Error             error  // The error that occurred
}

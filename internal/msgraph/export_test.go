package msgraph

// SetBaseURL points c at a test server.
func SetBaseURL(c *Client, u string) { c.baseURL = u }

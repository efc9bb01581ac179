package forecast

// SetWxtechBaseURLForTest points adapter at a local httptest.Server
// instead of the real WxTech API.
func SetWxtechBaseURLForTest(a *WxtechAdapter, url string) { a.baseURL = url }

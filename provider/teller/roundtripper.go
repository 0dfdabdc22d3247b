package teller

import "net/http"

// TellerRoundTripper places the access token as HTTP basic auth username on
// every request, the way Teller expects.
type TellerRoundTripper struct {
	accessToken string
	Base        http.RoundTripper
}

func (rt *TellerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	cloned := req.Clone(req.Context())
	cloned.SetBasicAuth(rt.accessToken, "")
	return rt.base().RoundTrip(cloned)
}

func (rt *TellerRoundTripper) base() http.RoundTripper {
	if rt.Base != nil {
		return rt.Base
	}
	return http.DefaultTransport
}

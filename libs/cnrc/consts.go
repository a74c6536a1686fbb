package cnrc

const (
	headEndpoint             = "/head"
	headerEndpoint           = "/header"
	submitPFDEndpoint        = "/submit_pfd"
	namespacedSharesEndpoint = "/namespaced_shares"
	namespacedDataEndpoint   = "/namespaced_data"

	heightKey = "height"
)

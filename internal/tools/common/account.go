package common

// GetAccountFromArgs extracts the account email from request arguments.
// Falls back to "default" when the caller does not name an account.
func GetAccountFromArgs(args map[string]interface{}) string {
	if accountVal, ok := args["account"].(string); ok && accountVal != "" {
		return accountVal
	}
	return "default"
}

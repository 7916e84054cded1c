package google

import (
	gmailapi "google.golang.org/api/gmail/v1"

	"github.com/wkhart/workspace-mcp/internal/scopes"
)

// Per-module scope declarations. Registered once at process start; the
// consent URL requests the union so the user grants everything in one
// prompt instead of being re-prompted as they use more tools.

// GmailScopes grant read, modify, and send access to Gmail.
var GmailScopes = map[string]string{
	gmailapi.GmailReadonlyScope: "Read mail and mailbox metadata",
	gmailapi.GmailModifyScope:   "Modify labels and archive threads",
	gmailapi.GmailSendScope:     "Send mail on the user's behalf",
}

// CalendarScopes grant full access to the user's calendars.
var CalendarScopes = map[string]string{
	"https://www.googleapis.com/auth/calendar": "Read and write calendar events",
}

// DriveScopes grant full access to Drive files.
var DriveScopes = map[string]string{
	"https://www.googleapis.com/auth/drive": "Read, upload, and manage Drive files",
}

// IdentityScopes identify the authenticating user.
var IdentityScopes = map[string]string{
	"openid": "OpenID Connect identity",
	"https://www.googleapis.com/auth/userinfo.email": "The user's email address",
}

// RegisterDefaultScopes declares every module's scopes in the registry.
func RegisterDefaultScopes(reg *scopes.Registry) {
	register := func(module string, set map[string]string) {
		for scope, description := range set {
			reg.Register(module, scope, description)
		}
	}
	register("identity", IdentityScopes)
	register("gmail", GmailScopes)
	register("calendar", CalendarScopes)
	register("drive", DriveScopes)
}

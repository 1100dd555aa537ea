/*
Package authsdk is a Go client for the tokenauth service, and the home of the
request and response types shared by the server handlers.

# SDKClient vs Session

SDKClient performs unauthenticated calls:

	client := authsdk.NewSDKClient("https://auth.example.com")

	user, err := client.Register(ctx, "a@x.com", "secret")
	tokens, err := client.Login(ctx, "a@x.com", "secret")

A Session holds a token pair and refreshes the access token shortly before it
expires. Refresh tokens are single use, so a Session rotates its stored
refresh token on every refresh:

	session, err := client.AuthenticateWithPassword(ctx, "a@x.com", "secret")

	me, err := session.Me(ctx)
	me, err = session.UpdateMe(ctx, authsdk.UpdateProfileRequest{Username: &name, UsernameSet: true})

	// Revokes the refresh token. The current access token stays valid until exp.
	err = session.Logout(ctx)

# Errors

Non-2xx responses are returned as *APIError carrying the HTTP status, the
machine-readable code and any per-field validation details:

	var apiErr *authsdk.APIError
	if errors.As(err, &apiErr) && apiErr.Code == authsdk.ErrorCodeInvalidCredentials {
		// wrong email or password
	}
*/
package authsdk

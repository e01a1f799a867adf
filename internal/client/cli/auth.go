package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/evento/internal/client/client"
	"github.com/dmitrijs2005/evento/internal/client/services"
	"github.com/dmitrijs2005/evento/internal/common"
)

// Input indirections, swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getMultiline  = GetMultiline
	getConfirm    = GetConfirm
	getChoice     = GetChoice
)

// Register prompts for the profile fields and creates the account.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	phone, err := getSimpleText(a.reader, "Enter phone (optional)", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.auth.Register(ctx, name, email, string(password), phone)
	if err != nil {
		a.fail(ctx, "register", err)
		return err
	}

	// registration does not obtain a backend token
	fmt.Fprintf(a.out, "Account created for %s. Please log in.\n", u.Email)
	a.navigate(RouteLogin)
	return nil
}

// Login authenticates with email and password. Remembered credentials are
// offered as defaults: an empty answer keeps the remembered value.
func (a *App) Login(ctx context.Context) error {
	remembered, err := a.auth.RememberedCredentials(ctx)
	if err != nil {
		a.logger.Warn(ctx, "recall remembered credentials", "error", err)
	}

	prompt := "Enter email"
	if remembered.Email != "" {
		prompt = fmt.Sprintf("Enter email [%s]", remembered.Email)
	}
	email, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return err
	}
	if email == "" {
		email = remembered.Email
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	pw := string(password)
	if pw == "" && email == remembered.Email {
		pw = remembered.Password
	}

	remember, err := getConfirm(a.reader, "Remember me on this device?", !remembered.Empty(), a.out)
	if err != nil {
		return err
	}

	u, err := a.auth.Login(ctx, email, pw, remember)
	if err != nil {
		var dl *services.DeviceLimitError
		if errors.As(err, &dl) {
			return a.deviceLimit(ctx, dl)
		}
		a.fail(ctx, "login", err)
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s\n", u.Email)
	a.navigate(RouteHome)
	return nil
}

// LoginGoogle runs the federated sign-in in the user's browser.
func (a *App) LoginGoogle(ctx context.Context) error {
	u, err := a.auth.LoginWithProvider(ctx)
	if err != nil {
		var dl *services.DeviceLimitError
		if errors.As(err, &dl) {
			return a.deviceLimit(ctx, dl)
		}
		a.fail(ctx, "google login", err)
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s\n", u.Email)
	a.navigate(RouteHome)
	return nil
}

// deviceLimit shows the device-limit view until the user cancels or the
// forced logout of every other device succeeds. Both outcomes end on the
// login view; a failed forced logout keeps the user here to retry.
func (a *App) deviceLimit(ctx context.Context, dl *services.DeviceLimitError) error {
	a.Replace(RouteDeviceLimit, dl)

	fmt.Fprintln(a.out, "Device limit reached.")
	if dl.Message != "" {
		fmt.Fprintln(a.out, dl.Message)
	}
	fmt.Fprintf(a.out, "%s is already signed in on the maximum number of devices.\n", dl.Email)

	for {
		choice, err := getChoice(a.reader, "[c]ancel or [f]orce logout of all devices?", []string{"c", "f"}, a.out)
		if err != nil {
			a.navigate(RouteLogin)
			return err
		}

		if choice == "c" {
			a.navigate(RouteLogin)
			return dl
		}

		err = a.auth.LogoutAllDevices(ctx, dl.Email, dl.UID)
		if err == nil {
			fmt.Fprintln(a.out, "Logged out of all devices. Please log in again.")
			a.navigate(RouteLogin)
			return nil
		}

		a.logger.Warn(ctx, "force logout failed", "email", dl.Email, "error", err)
		fmt.Fprintf(a.out, "Force logout failed: %s\n", errorMessage(err))
	}
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		a.fail(ctx, "logout", err)
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	a.navigate(RouteLogin)
	return nil
}

// LogoutAll signs the current account out of every device.
func (a *App) LogoutAll(ctx context.Context) error {
	u := a.currentUser()
	email, uid := "", ""
	if u != nil {
		email, uid = u.Email, u.UID
	}
	if email == "" {
		var err error
		if email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
			return err
		}
	}

	if err := a.auth.LogoutAllDevices(ctx, email, uid); err != nil {
		a.fail(ctx, "logout all", err)
		return err
	}
	fmt.Fprintln(a.out, "Logged out of all devices")
	a.navigate(RouteLogin)
	return nil
}

func (a *App) ForgotPassword(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	msg, err := a.auth.ForgotPassword(ctx, email)
	if err != nil {
		a.fail(ctx, "forgot password", err)
		return err
	}
	if msg == "" {
		msg = "Password reset instructions sent"
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

// WhoAmI prints the signed-in identity and the claims of the stored token.
func (a *App) WhoAmI(ctx context.Context) error {
	if u := a.currentUser(); u != nil {
		fmt.Fprintf(a.out, "User:    %s (%s)\n", u.Email, u.UID)
	}
	info, err := a.auth.TokenInfo(ctx)
	if err != nil {
		a.fail(ctx, "token info", err)
		return err
	}
	fmt.Fprintf(a.out, "Subject: %s\n", info.Subject)
	if !info.ExpiresAt.IsZero() {
		state := "valid"
		if info.Expired {
			state = "expired"
		}
		fmt.Fprintf(a.out, "Expires: %s (%s)\n", info.ExpiresAt.Format("2006-01-02 15:04:05"), state)
	}
	return nil
}

// Reload refreshes the identity profile from the backend.
func (a *App) Reload(ctx context.Context) error {
	if err := a.identity.ReloadCurrentUser(ctx); err != nil {
		a.fail(ctx, "reload", err)
		return err
	}
	fmt.Fprintln(a.out, "Profile reloaded")
	return nil
}

func (a *App) Ping(ctx context.Context) error {
	if err := a.auth.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		a.fail(ctx, "ping", err)
		return err
	}
	a.setMode(ModeOnline)
	fmt.Fprintln(a.out, "Server is reachable")
	return nil
}

// fail logs err and shows its user-facing message.
func (a *App) fail(ctx context.Context, op string, err error) {
	a.logger.Debug(ctx, op+" failed", "error", err)
	fmt.Fprintf(a.out, "Error: %s\n", errorMessage(err))
}

func errorMessage(err error) string {
	if apiErr, ok := client.AsAPIError(err); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

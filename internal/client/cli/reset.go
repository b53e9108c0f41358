package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/codewithyeow/lostandfoundpetphnompenh-sub000/internal/common"
)

// ForgotPassword walks the user through the OTP password-reset flow:
// request a code by email, verify it, then choose a new password. The
// reset token never reaches the user; it is consumed here and cleared
// once the flow finishes.
func (a *App) ForgotPassword(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter the account email", os.Stdout)
	if err != nil {
		return err
	}

	challenge, err := a.session.SendOtp(ctx, email)
	if err != nil {
		log.Printf("Could not send the code: %s", err.Error())
		return err
	}
	fmt.Printf("A code was sent to %s (valid for %d seconds).\n", challenge.Email, challenge.ExpiresIn)

	otp, err := getSimpleText(a.reader, "Enter the code", os.Stdout)
	if err != nil {
		return err
	}

	resetToken, err := a.session.VerifyOtp(ctx, email, otp)
	if err != nil {
		log.Printf("Code verification unsuccessful: %s", err.Error())
		return err
	}

	password, err := getPassword(os.Stdout, "Enter new password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirmation, err := getPassword(os.Stdout, "Confirm new password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirmation)

	if err := a.session.ResetPassword(ctx, string(password), string(confirmation), resetToken); err != nil {
		log.Printf("Password reset unsuccessful: %s", err.Error())
		return err
	}

	if err := a.session.ClearResetToken(ctx); err != nil {
		log.Printf("Could not clear reset state: %s", err.Error())
	}

	fmt.Println("Password changed. You can now log in with the new password.")
	return nil
}

package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codewithyeow/lostandfoundpetphnompenh-sub000/internal/client/models"
	"github.com/codewithyeow/lostandfoundpetphnompenh-sub000/internal/client/repositories/sessionstore"
	"github.com/codewithyeow/lostandfoundpetphnompenh-sub000/internal/common"
)

func TestSendOtp_InvalidEmail_NoNetworkCall(t *testing.T) {
	svc, fake, _ := newService(t)

	_, err := svc.SendOtp(context.Background(), "not-an-email")
	require.ErrorIs(t, err, common.ErrPrecondition)
	require.Zero(t, fake.SendOtpCalls)
}

func TestSendOtp_PersistsVerifyTokenAndDiscardsStaleState(t *testing.T) {
	svc, fake, db := newService(t)
	insertSession(t, db, sessionstore.KeyVerifyToken, []byte("stale-verify"))
	insertSession(t, db, sessionstore.KeyResetToken, []byte("stale-reset"))
	fake.SendOtpChallenge = &models.OtpChallenge{
		VerifyToken: "verify-1",
		ExpiresIn:   300,
		Email:       "sokha@example.com",
	}

	challenge, err := svc.SendOtp(context.Background(), "sokha@example.com")
	require.NoError(t, err)
	require.Equal(t, int64(300), challenge.ExpiresIn)

	require.Equal(t, []byte("verify-1"), sessionValue(t, db, sessionstore.KeyVerifyToken))
	require.Nil(t, sessionValue(t, db, sessionstore.KeyResetToken))
}

func TestSendOtp_RemoteFailure_LeavesNoVerifyToken(t *testing.T) {
	svc, fake, db := newService(t)
	fake.SendOtpErr = errors.New("rate limited")

	_, err := svc.SendOtp(context.Background(), "sokha@example.com")
	require.Error(t, err)
	require.Nil(t, sessionValue(t, db, sessionstore.KeyVerifyToken))
}

func TestVerifyOtp_WithoutSendOtp_Precondition(t *testing.T) {
	svc, fake, _ := newService(t)

	_, err := svc.VerifyOtp(context.Background(), "sokha@example.com", "123456")
	require.ErrorIs(t, err, common.ErrPrecondition)
	require.Zero(t, fake.VerifyCalls)
}

func TestVerifyOtp_Success_SwapsVerifyForResetToken(t *testing.T) {
	svc, fake, db := newService(t)
	insertSession(t, db, sessionstore.KeyVerifyToken, []byte("verify-1"))
	fake.VerifyResetToken = "reset-1"

	resetToken, err := svc.VerifyOtp(context.Background(), "sokha@example.com", "123456")
	require.NoError(t, err)
	require.Equal(t, "reset-1", resetToken)
	require.Equal(t, "verify-1", fake.LastVerifyToken)

	require.Nil(t, sessionValue(t, db, sessionstore.KeyVerifyToken))
	require.Equal(t, []byte("reset-1"), sessionValue(t, db, sessionstore.KeyResetToken))
}

func TestVerifyOtp_WrongCode_MutatesNothing(t *testing.T) {
	svc, fake, db := newService(t)
	insertSession(t, db, sessionstore.KeyVerifyToken, []byte("verify-1"))
	fake.VerifyErr = errors.New("otp mismatch")

	_, err := svc.VerifyOtp(context.Background(), "sokha@example.com", "000000")
	require.Error(t, err)

	require.Equal(t, []byte("verify-1"), sessionValue(t, db, sessionstore.KeyVerifyToken))
	require.Nil(t, sessionValue(t, db, sessionstore.KeyResetToken))
}

func TestResetPassword_MissingFields_Precondition(t *testing.T) {
	svc, fake, _ := newService(t)

	err := svc.ResetPassword(context.Background(), "newpw", "newpw", "")
	require.ErrorIs(t, err, common.ErrPrecondition)
	require.Zero(t, fake.ResetCalls)
}

func TestResetPassword_FullFlow(t *testing.T) {
	svc, fake, db := newService(t)
	fake.SendOtpChallenge = &models.OtpChallenge{VerifyToken: "verify-1", ExpiresIn: 300, Email: "sokha@example.com"}
	fake.VerifyResetToken = "reset-1"

	_, err := svc.SendOtp(context.Background(), "sokha@example.com")
	require.NoError(t, err)

	_, err = svc.VerifyOtp(context.Background(), "sokha@example.com", "123456")
	require.NoError(t, err)

	resetToken, err := svc.ResetToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, "reset-1", resetToken)

	require.NoError(t, svc.ResetPassword(context.Background(), "newpw", "newpw", resetToken))
	require.Equal(t, 1, fake.ResetCalls)

	// Resetting a password does not log anyone in.
	require.Equal(t, models.StatusLoggedOut, svc.Status())

	require.NoError(t, svc.ClearResetToken(context.Background()))
	require.Nil(t, sessionValue(t, db, sessionstore.KeyResetToken))

	resetToken, err = svc.ResetToken(context.Background())
	require.NoError(t, err)
	require.Empty(t, resetToken)
}

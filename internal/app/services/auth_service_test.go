package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/yigit/resultsportal/internal/app/models"
	"github.com/yigit/resultsportal/internal/app/models/dto"
	"github.com/yigit/resultsportal/internal/pkg/apperrors"
	"github.com/yigit/resultsportal/internal/pkg/auth"
	"github.com/yigit/resultsportal/internal/pkg/logger"
	"github.com/yigit/resultsportal/internal/testutil"
)

type authFixture struct {
	svc      *AuthService
	users    *testutil.UserStore
	sessions *testutil.SessionStore
	clock    *testutil.Clock
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	clock := testutil.NewClock(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	users := testutil.NewUserStore()
	sessions := testutil.NewSessionStore()
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:   "test-secret",
		Expiration:  30 * 24 * time.Hour,
		TokenIssuer: "resultsportal",
		Now:         clock.Now,
	})
	svc := NewAuthService(users, sessions, jwtService, AuthConfig{
		SessionTTL: 7 * 24 * time.Hour,
		Clock:      clock.Now,
	}, logger.Nop())
	return &authFixture{svc: svc, users: users, sessions: sessions, clock: clock}
}

func studentRequest(email string) dto.RegisterRequest {
	year := 2021
	program := "BCA"
	return dto.RegisterRequest{
		Name:          "Asha Patel",
		Email:         email,
		Password:      "secret1",
		Role:          models.RoleStudent,
		AdmissionYear: &year,
		Program:       &program,
	}
}

func (f *authFixture) register(t *testing.T, email string) *AuthResult {
	t.Helper()
	res, err := f.svc.Register(context.Background(), studentRequest(email), "test-agent")
	if err != nil {
		t.Fatalf("Register(%s): %v", email, err)
	}
	return res
}

func (f *authFixture) login(t *testing.T, email, device string) *AuthResult {
	t.Helper()
	res, err := f.svc.Login(context.Background(), dto.LoginRequest{Email: email, Password: "secret1"}, device)
	if err != nil {
		t.Fatalf("Login(%s): %v", email, err)
	}
	return res
}

func TestRegisterStoresLowercasedEmailAndHashedPassword(t *testing.T) {
	f := newAuthFixture(t)
	res := f.register(t, "Asha@X.com")

	if res.User.Email != "asha@x.com" {
		t.Fatalf("email = %q", res.User.Email)
	}
	if res.User.Password == "secret1" || !auth.CheckPassword(res.User.Password, "secret1") {
		t.Fatal("password must be stored as a bcrypt hash")
	}
	if res.Token == "" || f.sessions.Len() != 1 {
		t.Fatalf("registration should open one session, have %d", f.sessions.Len())
	}
	if res.User.AdmissionYear == nil || *res.User.AdmissionYear != 2021 || *res.User.Program != "BCA" {
		t.Fatalf("student fields not stored: %+v", res.User)
	}
}

func TestRegisterDuplicateEmailIgnoresCase(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "a@x.com")

	for _, email := range []string{"a@x.com", "A@X.COM", " a@X.com "} {
		_, err := f.svc.Register(context.Background(), studentRequest(email), "")
		if !errors.Is(err, apperrors.ErrConflict) {
			t.Fatalf("Register(%q) err = %v, want conflict", email, err)
		}
	}
}

func TestRegisterValidatesPerRole(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	missingStudentFields := dto.RegisterRequest{Name: "S", Email: "s@x.com", Password: "secret1", Role: models.RoleStudent}
	_, err := f.svc.Register(ctx, missingStudentFields, "")
	if !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("student without admission year: err = %v", err)
	}
	details := apperrors.DetailsOf(err)
	if _, ok := details["admissionYear"]; !ok {
		t.Fatalf("details should name admissionYear: %v", details)
	}
	if _, ok := details["program"]; !ok {
		t.Fatalf("details should name program: %v", details)
	}

	faculty := dto.RegisterRequest{Name: "F", Email: "f@x.com", Password: "secret1", Role: models.RoleFaculty}
	res, err := f.svc.Register(ctx, faculty, "")
	if err != nil {
		t.Fatalf("faculty registration: %v", err)
	}
	if res.User.AdmissionYear != nil || res.User.Program != nil {
		t.Fatal("faculty must not carry student fields")
	}

	badRole := dto.RegisterRequest{Name: "X", Email: "x@x.com", Password: "secret1", Role: "dean"}
	if _, err := f.svc.Register(ctx, badRole, ""); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("unknown role: err = %v", err)
	}

	// bcrypt only reads the first 72 bytes
	longPassword := dto.RegisterRequest{Name: "Y", Email: "y@x.com", Password: strings.Repeat("p", 73), Role: models.RoleFaculty}
	if _, err := f.svc.Register(ctx, longPassword, ""); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("long password: err = %v", err)
	}

	// no minimum length
	short := dto.RegisterRequest{Name: "Z", Email: "z@x.com", Password: "pw", Role: models.RoleFaculty}
	if _, err := f.svc.Register(ctx, short, ""); err != nil {
		t.Fatalf("short password: %v", err)
	}
}

func TestRegisterAdminRequiresOptIn(t *testing.T) {
	f := newAuthFixture(t)
	admin := dto.RegisterRequest{Name: "Root", Email: "root@x.com", Password: "secret1", Role: models.RoleAdmin}

	if _, err := f.svc.Register(context.Background(), admin, ""); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("err = %v, want permission denied", err)
	}

	f.svc.config.AllowAdminRegistration = true
	if _, err := f.svc.Register(context.Background(), admin, ""); err != nil {
		t.Fatalf("opted-in admin registration: %v", err)
	}
}

func TestLoginErrors(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "a@x.com")
	ctx := context.Background()

	_, err := f.svc.Login(ctx, dto.LoginRequest{Email: "nobody@x.com", Password: "secret1"}, "")
	if !errors.Is(err, apperrors.ErrResourceNotFound) {
		t.Fatalf("unknown email: err = %v, want not found", err)
	}

	_, err = f.svc.Login(ctx, dto.LoginRequest{Email: "a@x.com", Password: "wrong-password"}, "")
	if !errors.Is(err, apperrors.ErrInvalidCredentials) {
		t.Fatalf("wrong password: err = %v, want invalid credentials", err)
	}
}

func TestLoginAccumulatesSessionsPerDevice(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "a@x.com")

	first := f.login(t, "A@x.com", "Firefox")
	f.clock.Advance(time.Second)
	second := f.login(t, "a@x.com", "Firefox")

	if first.Token == second.Token {
		t.Fatal("each login must issue a distinct token")
	}
	if f.sessions.Len() != 3 {
		t.Fatalf("sessions = %d, want 3 (registration + two logins)", f.sessions.Len())
	}
	if second.User.LastLoginAt == nil || !second.User.LastLoginAt.Equal(f.clock.Now()) {
		t.Fatalf("last login not updated: %v", second.User.LastLoginAt)
	}
	if second.Session.Device != "Firefox" {
		t.Fatalf("device = %q", second.Session.Device)
	}
}

func TestValidateSessionSlidingTTL(t *testing.T) {
	f := newAuthFixture(t)
	res := f.register(t, "a@x.com")
	ctx := context.Background()

	f.clock.Advance(6 * 24 * time.Hour)
	if _, _, err := f.svc.ValidateSession(ctx, res.Token); err != nil {
		t.Fatalf("session used within TTL: %v", err)
	}

	// the previous use slid the window forward
	f.clock.Advance(6 * 24 * time.Hour)
	user, sess, err := f.svc.ValidateSession(ctx, res.Token)
	if err != nil {
		t.Fatalf("session used within refreshed TTL: %v", err)
	}
	if user.ID != res.User.ID || !sess.LastUsedAt.Equal(f.clock.Now()) {
		t.Fatalf("unexpected session state: user %d lastUsed %v", user.ID, sess.LastUsedAt)
	}

	f.clock.Advance(7*24*time.Hour + time.Minute)
	_, _, err = f.svc.ValidateSession(ctx, res.Token)
	if !errors.Is(err, apperrors.ErrTokenExpired) {
		t.Fatalf("idle session: err = %v, want expired", err)
	}
	if f.sessions.Len() != 0 {
		t.Fatal("expired session should be pruned")
	}
}

func TestValidateSessionTTLBoundaryInclusive(t *testing.T) {
	f := newAuthFixture(t)
	res := f.register(t, "a@x.com")

	f.clock.Advance(7 * 24 * time.Hour)
	if _, _, err := f.svc.ValidateSession(context.Background(), res.Token); err != nil {
		t.Fatalf("exactly TTL idle should still be valid: %v", err)
	}
}

func TestValidateSessionRejections(t *testing.T) {
	f := newAuthFixture(t)
	res := f.register(t, "a@x.com")
	ctx := context.Background()

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"tampered", res.Token + "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := f.svc.ValidateSession(ctx, tt.token)
			if err == nil {
				t.Fatal("expected rejection")
			}
			if !apperrors.Is(err, apperrors.ErrUnauthorized, apperrors.ErrTokenInvalid) {
				t.Fatalf("err = %v", err)
			}
		})
	}
}

func TestValidateSessionUnknownUser(t *testing.T) {
	f := newAuthFixture(t)
	res := f.register(t, "a@x.com")
	if err := f.users.Delete(context.Background(), res.User.ID); err != nil {
		t.Fatal(err)
	}

	_, _, err := f.svc.ValidateSession(context.Background(), res.Token)
	if !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("err = %v, want unauthorized", err)
	}
}

func TestChangePasswordRevokesEarlierSessions(t *testing.T) {
	f := newAuthFixture(t)
	reg := f.register(t, "a@x.com")
	other := f.login(t, "a@x.com", "Phone")
	ctx := context.Background()

	f.clock.Advance(time.Minute)
	err := f.svc.ChangePassword(ctx, reg.User.ID, dto.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "secret2"})
	if !errors.Is(err, apperrors.ErrInvalidCredentials) {
		t.Fatalf("wrong current password: err = %v", err)
	}

	if err := f.svc.ChangePassword(ctx, reg.User.ID, dto.ChangePasswordRequest{CurrentPassword: "secret1", NewPassword: "secret2"}); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}

	for _, tok := range []string{reg.Token, other.Token} {
		if _, _, err := f.svc.ValidateSession(ctx, tok); !errors.Is(err, apperrors.ErrTokenRevoked) {
			t.Fatalf("pre-change session: err = %v, want revoked", err)
		}
	}

	f.clock.Advance(time.Second)
	fresh, err := f.svc.Login(ctx, dto.LoginRequest{Email: "a@x.com", Password: "secret2"}, "Laptop")
	if err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if _, _, err := f.svc.ValidateSession(ctx, fresh.Token); err != nil {
		t.Fatalf("post-change session: %v", err)
	}
}

func TestLogoutRevokesOnlyThatSession(t *testing.T) {
	f := newAuthFixture(t)
	reg := f.register(t, "a@x.com")
	other := f.login(t, "a@x.com", "Phone")
	ctx := context.Background()

	if err := f.svc.Logout(ctx, reg.Token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, _, err := f.svc.ValidateSession(ctx, reg.Token); err == nil {
		t.Fatal("logged out token must fail")
	}
	if _, _, err := f.svc.ValidateSession(ctx, other.Token); err != nil {
		t.Fatalf("other session must survive: %v", err)
	}

	if err := f.svc.Logout(ctx, reg.Token); err != nil {
		t.Fatalf("second logout should be a no-op: %v", err)
	}

	if err := f.svc.LogoutAll(ctx, reg.User.ID); err != nil {
		t.Fatalf("LogoutAll: %v", err)
	}
	if f.sessions.Len() != 0 {
		t.Fatalf("sessions left: %d", f.sessions.Len())
	}
}

func TestDevices(t *testing.T) {
	f := newAuthFixture(t)
	reg := f.register(t, "a@x.com")
	phone := f.login(t, "a@x.com", "Phone")
	ctx := context.Background()
	userID := reg.User.ID

	devices, err := f.svc.ListDevices(ctx, userID, reg.Session.ID)
	if err != nil {
		t.Fatalf("ListDevices: %v", err)
	}
	if len(devices) != 1 || devices[0].ID != phone.Session.ID || devices[0].Device != "Phone" {
		t.Fatalf("devices = %+v, want only the phone", devices)
	}

	if err := f.svc.RemoveDevice(ctx, userID, reg.Session.ID, reg.Session.ID.String()); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("removing own session: err = %v, want validation", err)
	}
	if err := f.svc.RemoveDevice(ctx, userID, reg.Session.ID, "not-a-uuid"); !errors.Is(err, apperrors.ErrResourceNotFound) {
		t.Fatalf("bad id: err = %v, want not found", err)
	}

	intruder := f.register(t, "b@x.com")
	if err := f.svc.RemoveDevice(ctx, userID, reg.Session.ID, intruder.Session.ID.String()); !errors.Is(err, apperrors.ErrResourceNotFound) {
		t.Fatalf("foreign session: err = %v, want not found", err)
	}

	if err := f.svc.RemoveDevice(ctx, userID, reg.Session.ID, phone.Session.ID.String()); err != nil {
		t.Fatalf("RemoveDevice: %v", err)
	}
	if _, _, err := f.svc.ValidateSession(ctx, phone.Token); err == nil {
		t.Fatal("removed device must fail validation")
	}
	if _, _, err := f.svc.ValidateSession(ctx, reg.Token); err != nil {
		t.Fatalf("current session must survive: %v", err)
	}
}

func TestDeviceLabelTruncatesOnRuneBoundary(t *testing.T) {
	// "é" is two bytes; an odd prefix pushes a rune across the cut
	ua := "x" + strings.Repeat("é", 400)

	got := deviceLabel(ua)
	if len(got) > maxDeviceLength {
		t.Fatalf("len = %d, want <= %d", len(got), maxDeviceLength)
	}
	if !utf8.ValidString(got) {
		t.Fatalf("label is not valid UTF-8: %q", got[len(got)-4:])
	}
	if len(got) != maxDeviceLength-1 {
		t.Fatalf("len = %d, want %d", len(got), maxDeviceLength-1)
	}

	if deviceLabel("  ") != models.UnknownDevice {
		t.Fatal("blank agent must map to the unknown device label")
	}
	if deviceLabel("Phone") != "Phone" {
		t.Fatal("short agent must pass through")
	}
}

package services

import (
	"context"
	"errors"
	"testing"

	"github.com/yigit/resultsportal/internal/app/models/dto"
	"github.com/yigit/resultsportal/internal/pkg/apperrors"
	"github.com/yigit/resultsportal/internal/pkg/logger"
)

func TestUpdateProfile(t *testing.T) {
	f := newAuthFixture(t)
	svc := NewUserService(f.users, f.sessions, logger.Nop())
	ctx := context.Background()
	a := f.register(t, "a@x.com")
	f.register(t, "b@x.com")

	_, err := svc.UpdateProfile(ctx, a.User.ID, dto.UpdateProfileRequest{Email: strPtr("B@x.com")})
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("taken email: err = %v, want conflict", err)
	}

	year := 2022
	updated, err := svc.UpdateProfile(ctx, a.User.ID, dto.UpdateProfileRequest{
		Name:          strPtr("Asha P."),
		Email:         strPtr("Asha.New@x.com"),
		AdmissionYear: &year,
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.Name != "Asha P." || updated.Email != "asha.new@x.com" || *updated.AdmissionYear != 2022 {
		t.Fatalf("updated = %+v", updated)
	}
	if *updated.Program != "BCA" {
		t.Fatal("fields not sent must be kept")
	}

	if _, err := svc.UpdateProfile(ctx, a.User.ID, dto.UpdateProfileRequest{Email: strPtr("nope")}); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("bad email: err = %v", err)
	}
}

func TestListUsersPagination(t *testing.T) {
	f := newAuthFixture(t)
	svc := NewUserService(f.users, f.sessions, logger.Nop())
	for _, e := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		f.register(t, e)
	}
	ctx := context.Background()

	all, info, err := svc.ListUsers(ctx, 0, 0, false)
	if err != nil || len(all) != 3 || info != nil {
		t.Fatalf("all users: %d %v %v", len(all), info, err)
	}

	page, info, err := svc.ListUsers(ctx, 2, 2, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 1 || page[0].Email != "c@x.com" || info.TotalItems != 3 || info.TotalPages != 2 {
		t.Fatalf("page 2 = %+v info %+v", page, info)
	}
}

func TestDeleteUserRevokesSessions(t *testing.T) {
	f := newAuthFixture(t)
	svc := NewUserService(f.users, f.sessions, logger.Nop())
	ctx := context.Background()
	admin := f.register(t, "admin@x.com")
	victim := f.register(t, "v@x.com")

	if err := svc.DeleteUser(ctx, admin.User.ID, admin.User.ID); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("self delete: err = %v", err)
	}
	if err := svc.DeleteUser(ctx, admin.User.ID, 999); !errors.Is(err, apperrors.ErrResourceNotFound) {
		t.Fatalf("unknown user: err = %v", err)
	}
	if err := svc.DeleteUser(ctx, admin.User.ID, victim.User.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, _, err := f.svc.ValidateSession(ctx, victim.Token); err == nil {
		t.Fatal("deleted user's session must fail")
	}
	if f.sessions.Len() != 1 {
		t.Fatalf("sessions = %d, want only the admin's", f.sessions.Len())
	}
}

func strPtr(s string) *string { return &s }

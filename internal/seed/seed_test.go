package seed

import (
	"context"
	"testing"

	appModels "github.com/yigit/resultsportal/internal/app/models"
	"github.com/yigit/resultsportal/internal/pkg/auth"
	"github.com/yigit/resultsportal/internal/pkg/logger"
	"github.com/yigit/resultsportal/internal/testutil"
	"golang.org/x/crypto/bcrypt"
)

func TestCreateDefaultAdmin(t *testing.T) {
	auth.BcryptCost = bcrypt.MinCost
	ctx := context.Background()
	users := testutil.NewUserStore()
	account := AdminAccount{Email: " Admin@Example.com ", Password: "changeme1"}

	if err := CreateDefaultAdmin(ctx, users, account, logger.Nop()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	admin, err := users.GetByEmail(ctx, "admin@example.com")
	if err != nil {
		t.Fatalf("admin not created: %v", err)
	}
	if admin.Role != appModels.RoleAdmin || !admin.IsActive || admin.Name != "Administrator" {
		t.Fatalf("unexpected admin %+v", admin)
	}
	if !auth.CheckPassword(admin.Password, "changeme1") {
		t.Fatal("password not hashed from configuration")
	}

	// second run is a no-op
	if err := CreateDefaultAdmin(ctx, users, account, logger.Nop()); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if n, _ := users.Count(ctx); n != 1 {
		t.Fatalf("users = %d, want 1", n)
	}
}

func TestCreateDefaultAdminDisabled(t *testing.T) {
	users := testutil.NewUserStore()
	if err := CreateDefaultAdmin(context.Background(), users, AdminAccount{Email: "a@x.com"}, logger.Nop()); err != nil {
		t.Fatal(err)
	}
	if n, _ := users.Count(context.Background()); n != 0 {
		t.Fatalf("users = %d, want 0", n)
	}
}

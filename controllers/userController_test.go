package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"

	"muniboard-be/models"
	"muniboard-be/store"
	"muniboard-be/store/mocks"
)

func userRouter(users store.UserRepository, data *store.Store, p *models.Principal) *gin.Engine {
	h := &UserController{Users: users, Data: data}
	r := gin.New()
	g := r.Group("/api/users", asPrincipal(p))
	g.GET("", h.List)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	return r
}

func TestCreateUserMunicipalityAdminForcesScope(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockUserRepository(ctrl)
	data := store.NewWithData(testDataset())
	admin := &models.Principal{UserID: 9, Role: models.RoleMunicipalityAdmin, MunicipalityID: intPtr(1)}

	repo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *models.User) error {
			if u.MunicipalityID == nil || *u.MunicipalityID != 1 {
				t.Errorf("municipality = %v, want forced to 1", u.MunicipalityID)
			}
			if u.RoleID != 4 {
				t.Errorf("role_id = %d, want Manager", u.RoleID)
			}
			if u.Password == "hunter22" {
				t.Error("password stored unhashed")
			}
			u.ID = 42
			return nil
		})

	payload := `{"username":"newmanager","email":"nm@muni.gov","password":"hunter22","role_id":4,"municipality_id":2}`
	w, body := doJSON(t, userRouter(repo, data, admin), http.MethodPost, "/api/users", payload)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if got := body["user_id"].(float64); got != 42 {
		t.Errorf("user_id = %v, want 42", got)
	}
	if body["role"] != models.RoleManager {
		t.Errorf("role = %v", body["role"])
	}
}

func TestCreateUserMunicipalityAdminCannotMintAdmins(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockUserRepository(ctrl)
	data := store.NewWithData(testDataset())
	admin := &models.Principal{UserID: 9, Role: models.RoleMunicipalityAdmin, MunicipalityID: intPtr(1)}

	payload := `{"username":"sneaky","email":"s@muni.gov","password":"hunter22","role_id":1}`
	w, _ := doJSON(t, userRouter(repo, data, admin), http.MethodPost, "/api/users", payload)
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestCreateUserScopedRoleNeedsMunicipality(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockUserRepository(ctrl)
	data := store.NewWithData(testDataset())
	super := &models.Principal{UserID: 9, Role: models.RoleSuperAdmin}

	payload := `{"username":"stray","email":"stray@muni.gov","password":"hunter22","role_id":4}`
	w, body := doJSON(t, userRouter(repo, data, super), http.MethodPost, "/api/users", payload)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if body["error"] != "Municipality is required for this role" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockUserRepository(ctrl)
	data := store.NewWithData(testDataset())
	super := &models.Principal{UserID: 9, Role: models.RoleSuperAdmin}

	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(store.ErrEmailTaken)

	payload := `{"username":"dupe","email":"ravi@example.com","password":"hunter22","role_id":6,"municipality_id":1}`
	w, body := doJSON(t, userRouter(repo, data, super), http.MethodPost, "/api/users", payload)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if body["error"] != "User with this email already exists" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestUpdateUserMunicipalityAdminOutOfScope(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockUserRepository(ctrl)
	data := store.NewWithData(testDataset())
	admin := &models.Principal{UserID: 9, Role: models.RoleMunicipalityAdmin, MunicipalityID: intPtr(1)}

	target := models.User{ID: 7, Username: "mira", Email: "mira@example.com",
		RoleID: 6, MunicipalityID: intPtr(2)}
	repo.EXPECT().Get(gomock.Any(), 7).Return(&target, nil)

	w, _ := doJSON(t, userRouter(repo, data, admin), http.MethodPut, "/api/users/7", `{"role_id":1}`)
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403 for a user outside the admin's municipality", w.Code)
	}
}

func TestUpdateUserMunicipalityAdminCannotEscalateRole(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockUserRepository(ctrl)
	data := store.NewWithData(testDataset())
	admin := &models.Principal{UserID: 9, Role: models.RoleMunicipalityAdmin, MunicipalityID: intPtr(1)}

	target := models.User{ID: 1, Username: "asha", Email: "asha@muni.gov",
		RoleID: 4, MunicipalityID: intPtr(1)}
	repo.EXPECT().Get(gomock.Any(), 1).Return(&target, nil)

	w, _ := doJSON(t, userRouter(repo, data, admin), http.MethodPut, "/api/users/1", `{"role_id":1}`)
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403 for a role escalation attempt", w.Code)
	}
}

func TestUpdateUserMunicipalityAdminCannotMoveMunicipality(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockUserRepository(ctrl)
	data := store.NewWithData(testDataset())
	admin := &models.Principal{UserID: 9, Role: models.RoleMunicipalityAdmin, MunicipalityID: intPtr(1)}

	target := models.User{ID: 1, Username: "asha", Email: "asha@muni.gov",
		RoleID: 4, MunicipalityID: intPtr(1)}
	repo.EXPECT().Get(gomock.Any(), 1).Return(&target, nil)

	w, _ := doJSON(t, userRouter(repo, data, admin), http.MethodPut, "/api/users/1", `{"municipality_id":2}`)
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403 for moving a user out of scope", w.Code)
	}
}

func TestDeleteUserMunicipalityAdminOutOfScope(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockUserRepository(ctrl)
	data := store.NewWithData(testDataset())
	admin := &models.Principal{UserID: 9, Role: models.RoleMunicipalityAdmin, MunicipalityID: intPtr(1)}

	target := models.User{ID: 7, Username: "mira", Email: "mira@example.com",
		RoleID: 6, MunicipalityID: intPtr(2)}
	repo.EXPECT().Get(gomock.Any(), 7).Return(&target, nil)

	w, _ := doJSON(t, userRouter(repo, data, admin), http.MethodDelete, "/api/users/7", "")
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403 for a user outside the admin's municipality", w.Code)
	}
}

func TestDeleteUserMunicipalityAdminInScope(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockUserRepository(ctrl)
	data := store.NewWithData(testDataset())
	admin := &models.Principal{UserID: 9, Role: models.RoleMunicipalityAdmin, MunicipalityID: intPtr(1)}

	target := models.User{ID: 5, Username: "paveworks", Email: "ops@paveworks.com",
		RoleID: 5, MunicipalityID: intPtr(1)}
	repo.EXPECT().Get(gomock.Any(), 5).Return(&target, nil)
	repo.EXPECT().Delete(gomock.Any(), 5).Return(nil)

	w, _ := doJSON(t, userRouter(repo, data, admin), http.MethodDelete, "/api/users/5", "")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for an in-scope contractor", w.Code)
	}
}

func TestUpdateUserEmptyPasswordKeepsHash(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockUserRepository(ctrl)
	data := store.NewWithData(testDataset())
	super := &models.Principal{UserID: 9, Role: models.RoleSuperAdmin}

	existing := models.User{ID: 2, Username: "ravi", Email: "ravi@example.com",
		Password: "$2a$10$existinghash", RoleID: 6, MunicipalityID: intPtr(1)}
	repo.EXPECT().Get(gomock.Any(), 2).Return(&existing, nil)
	repo.EXPECT().
		Update(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u models.User) (*models.User, error) {
			if u.Password != existing.Password {
				t.Errorf("password hash changed on empty password: %q", u.Password)
			}
			if u.Username != "ravi_k" {
				t.Errorf("username = %q", u.Username)
			}
			return &u, nil
		})

	payload := `{"username":"ravi_k","password":""}`
	w, _ := doJSON(t, userRouter(repo, data, super), http.MethodPut, "/api/users/2", payload)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestDeleteUserNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockUserRepository(ctrl)
	data := store.NewWithData(testDataset())
	super := &models.Principal{UserID: 9, Role: models.RoleSuperAdmin}

	repo.EXPECT().Delete(gomock.Any(), 99).Return(store.ErrUserNotFound)

	w, _ := doJSON(t, userRouter(repo, data, super), http.MethodDelete, "/api/users/99", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestListUsersScoped(t *testing.T) {
	s := store.NewWithData(testDataset())
	admin := &models.Principal{UserID: 9, Role: models.RoleMunicipalityAdmin, MunicipalityID: intPtr(1)}

	w, body := doJSON(t, userRouter(s.Users(), s, admin), http.MethodGet, "/api/users", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	// only the Riverton manager and contractor are in scope
	if got := body["total"].(float64); got != 2 {
		t.Errorf("total = %v, want 2", got)
	}
}

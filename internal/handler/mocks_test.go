package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/fndc/torneo/internal/cube"
	"github.com/fndc/torneo/internal/model"
	"github.com/fndc/torneo/internal/tournament"
	"github.com/fndc/torneo/internal/user"
)

// mockAuthService はAuthServiceInterfaceのモック実装。
type mockAuthService struct {
	registerFunc           func(ctx context.Context, email, name, password string, preferredCube *string) (*model.User, error)
	loginFunc              func(ctx context.Context, email, password string) (string, error)
	googleSignInFunc       func(ctx context.Context, idToken string) (string, error)
	verifyEmailFunc        func(ctx context.Context, token string) error
	forgotPasswordFunc     func(ctx context.Context, email string) error
	resetPasswordFunc      func(ctx context.Context, token, newPassword string) error
	resendVerificationFunc func(ctx context.Context, email string) error
}

func (m *mockAuthService) Register(ctx context.Context, email, name, password string, preferredCube *string) (*model.User, error) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, email, name, password, preferredCube)
	}
	return &model.User{ID: "user-1", Email: email, Name: name, Role: model.RoleUser}, nil
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (string, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, email, password)
	}
	return "session-token", nil
}

func (m *mockAuthService) GoogleSignIn(ctx context.Context, idToken string) (string, error) {
	if m.googleSignInFunc != nil {
		return m.googleSignInFunc(ctx, idToken)
	}
	return "session-token", nil
}

func (m *mockAuthService) VerifyEmail(ctx context.Context, token string) error {
	if m.verifyEmailFunc != nil {
		return m.verifyEmailFunc(ctx, token)
	}
	return nil
}

func (m *mockAuthService) ForgotPassword(ctx context.Context, email string) error {
	if m.forgotPasswordFunc != nil {
		return m.forgotPasswordFunc(ctx, email)
	}
	return nil
}

func (m *mockAuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if m.resetPasswordFunc != nil {
		return m.resetPasswordFunc(ctx, token, newPassword)
	}
	return nil
}

func (m *mockAuthService) ResendVerification(ctx context.Context, email string) error {
	if m.resendVerificationFunc != nil {
		return m.resendVerificationFunc(ctx, email)
	}
	return nil
}

var _ AuthServiceInterface = (*mockAuthService)(nil)

// mockTournamentService はTournamentServiceInterfaceのモック実装。
type mockTournamentService struct {
	createFunc       func(ctx context.Context, createdBy string, input tournament.CreateInput) (*model.Tournament, error)
	getFunc          func(ctx context.Context, id string) (*model.Tournament, error)
	listFunc         func(ctx context.Context) ([]*model.Tournament, error)
	updateFunc       func(ctx context.Context, id string, input tournament.CreateInput) (*model.Tournament, error)
	deleteFunc       func(ctx context.Context, id string) error
	registerFunc     func(ctx context.Context, tournamentID, userID string) (*model.TournamentRegistration, error)
	unregisterFunc   func(ctx context.Context, tournamentID, userID string) error
	registrationFunc func(ctx context.Context, tournamentID, userID string) (*model.TournamentRegistration, error)
	participantsFunc func(ctx context.Context, tournamentID string) ([]tournament.ParticipantInfo, error)
}

func (m *mockTournamentService) Create(ctx context.Context, createdBy string, input tournament.CreateInput) (*model.Tournament, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, createdBy, input)
	}
	return &model.Tournament{ID: "t-1", Name: input.Name, CreatedBy: createdBy}, nil
}

func (m *mockTournamentService) Get(ctx context.Context, id string) (*model.Tournament, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return &model.Tournament{ID: id}, nil
}

func (m *mockTournamentService) List(ctx context.Context) ([]*model.Tournament, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return []*model.Tournament{}, nil
}

func (m *mockTournamentService) Update(ctx context.Context, id string, input tournament.CreateInput) (*model.Tournament, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, input)
	}
	return &model.Tournament{ID: id, Name: input.Name}, nil
}

func (m *mockTournamentService) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockTournamentService) Register(ctx context.Context, tournamentID, userID string) (*model.TournamentRegistration, error) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, tournamentID, userID)
	}
	return &model.TournamentRegistration{ID: "r-1", TournamentID: tournamentID, UserID: userID}, nil
}

func (m *mockTournamentService) Unregister(ctx context.Context, tournamentID, userID string) error {
	if m.unregisterFunc != nil {
		return m.unregisterFunc(ctx, tournamentID, userID)
	}
	return nil
}

func (m *mockTournamentService) Registration(ctx context.Context, tournamentID, userID string) (*model.TournamentRegistration, error) {
	if m.registrationFunc != nil {
		return m.registrationFunc(ctx, tournamentID, userID)
	}
	return nil, nil
}

func (m *mockTournamentService) Participants(ctx context.Context, tournamentID string) ([]tournament.ParticipantInfo, error) {
	if m.participantsFunc != nil {
		return m.participantsFunc(ctx, tournamentID)
	}
	return []tournament.ParticipantInfo{}, nil
}

var _ TournamentServiceInterface = (*mockTournamentService)(nil)

// mockCubeService はCubeServiceInterfaceのモック実装。
type mockCubeService struct {
	proposeFunc func(ctx context.Context, userID string, input cube.ProposeInput) (*model.CubeProposal, error)
	listFunc    func(ctx context.Context, tournamentID string, includeProposed bool) ([]*model.CubeProposal, error)
	enableFunc  func(ctx context.Context, proposalID string) (*model.CubeProposal, error)
	deleteFunc  func(ctx context.Context, proposalID string) error
}

func (m *mockCubeService) Propose(ctx context.Context, userID string, input cube.ProposeInput) (*model.CubeProposal, error) {
	if m.proposeFunc != nil {
		return m.proposeFunc(ctx, userID, input)
	}
	return &model.CubeProposal{
		ID:           "c-1",
		TournamentID: input.TournamentID,
		UserID:       userID,
		CubeURL:      input.CubeURL,
		Status:       model.CubeStatusProposed,
	}, nil
}

func (m *mockCubeService) ListForTournament(ctx context.Context, tournamentID string, includeProposed bool) ([]*model.CubeProposal, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, tournamentID, includeProposed)
	}
	return []*model.CubeProposal{}, nil
}

func (m *mockCubeService) Enable(ctx context.Context, proposalID string) (*model.CubeProposal, error) {
	if m.enableFunc != nil {
		return m.enableFunc(ctx, proposalID)
	}
	return &model.CubeProposal{ID: proposalID, Status: model.CubeStatusEnabled}, nil
}

func (m *mockCubeService) Delete(ctx context.Context, proposalID string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, proposalID)
	}
	return nil
}

var _ CubeServiceInterface = (*mockCubeService)(nil)

// mockUserService はUserServiceInterfaceのモック実装。
type mockUserService struct {
	getFunc           func(ctx context.Context, id string) (*model.User, error)
	updateProfileFunc func(ctx context.Context, userID string, input user.UpdateProfileInput) (*model.User, error)
	listFunc          func(ctx context.Context) ([]*model.User, error)
	updateRoleFunc    func(ctx context.Context, actorID, targetID string, role model.Role) (*model.User, error)
}

func (m *mockUserService) Get(ctx context.Context, id string) (*model.User, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return &model.User{ID: id, Role: model.RoleUser, IsVerified: true}, nil
}

func (m *mockUserService) UpdateProfile(ctx context.Context, userID string, input user.UpdateProfileInput) (*model.User, error) {
	if m.updateProfileFunc != nil {
		return m.updateProfileFunc(ctx, userID, input)
	}
	return &model.User{ID: userID, Role: model.RoleUser, IsVerified: true}, nil
}

func (m *mockUserService) List(ctx context.Context) ([]*model.User, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return []*model.User{}, nil
}

func (m *mockUserService) UpdateRole(ctx context.Context, actorID, targetID string, role model.Role) (*model.User, error) {
	if m.updateRoleFunc != nil {
		return m.updateRoleFunc(ctx, actorID, targetID, role)
	}
	return &model.User{ID: targetID, Role: role, IsVerified: true}, nil
}

var _ UserServiceInterface = (*mockUserService)(nil)

// mockResolver はmiddleware.CurrentUserResolverのモック実装。
type mockResolver struct {
	currentUserFunc func(ctx context.Context, token string) (*model.User, error)
}

func (m *mockResolver) CurrentUser(ctx context.Context, token string) (*model.User, error) {
	if m.currentUserFunc != nil {
		return m.currentUserFunc(ctx, token)
	}
	return nil, model.NewUnauthorizedError()
}

// decodeErrorResponse はエラーレスポンスのボディをデコードするヘルパー。
func decodeErrorResponse(t *testing.T, rec *httptest.ResponseRecorder) apiErrorResponse {
	t.Helper()
	var body apiErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body
}

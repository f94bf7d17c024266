package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CheickOuedraogo/tuteur-backend/internal/apperr"
	"github.com/CheickOuedraogo/tuteur-backend/internal/database"
	"github.com/CheickOuedraogo/tuteur-backend/internal/database/dbtest"
	"github.com/CheickOuedraogo/tuteur-backend/internal/models"
	"github.com/CheickOuedraogo/tuteur-backend/internal/security"
)

type recordingMailer struct {
	sent []string
	err  error
}

func (m *recordingMailer) SendWelcomeEmail(_ context.Context, toEmail, _, classe string) error {
	m.sent = append(m.sent, toEmail+"|"+classe)
	return m.err
}

func newAuthService(t *testing.T, db *database.DB, mailer WelcomeMailer) *AuthService {
	t.Helper()
	tokens, err := security.NewTokenManager("un-secret-de-test-assez-long", time.Hour)
	require.NoError(t, err)
	return NewAuthService(db, tokens, mailer, nil)
}

func validSignup() SignupRequest {
	return SignupRequest{
		Username:  "awa",
		Password:  "motdepasse",
		Email:     "awa@example.bf",
		FirstName: "Awa",
		Classe:    " CM2 ",
	}
}

func TestSignupAndLogin(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	mailer := &recordingMailer{}
	auth := newAuthService(t, db, mailer)

	res, err := auth.Signup(ctx, validSignup())
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.True(t, res.User.IsActive)
	assert.Equal(t, "cm2", res.Profile.Classe)
	assert.Equal(t, []string{"awa@example.bf|cm2"}, mailer.sent)

	user, err := auth.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, user.ID)

	byName, err := auth.Login(ctx, "awa", "motdepasse")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, byName.User.ID)
	require.NotNil(t, byName.Profile)
	assert.Equal(t, "cm2", byName.Profile.Classe)
	assert.NotNil(t, byName.User.LastLogin)

	byEmail, err := auth.Login(ctx, "awa@example.bf", "motdepasse")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, byEmail.User.ID)

	_, err = auth.Login(ctx, "awa", "mauvais")
	requireKind(t, err, apperr.KindValidation)
	_, err = auth.Login(ctx, "personne", "motdepasse")
	requireKind(t, err, apperr.KindValidation)

	_, err = auth.Authenticate(ctx, "not-a-token")
	requireKind(t, err, apperr.KindUnauthorized)
}

func TestSignup_Validation(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	auth := newAuthService(t, db, nil)

	_, err := auth.Signup(ctx, validSignup())
	require.NoError(t, err)

	tests := []struct {
		name  string
		edit  func(*SignupRequest)
		field string
	}{
		{"username taken", func(r *SignupRequest) { r.Email = "autre@example.bf" }, "username"},
		{"email taken", func(r *SignupRequest) { r.Username = "awa2" }, "email"},
		{"short password", func(r *SignupRequest) { r.Username = "bob"; r.Email = "bob@example.bf"; r.Password = "123" }, "password"},
		{"bad grade", func(r *SignupRequest) { r.Username = "bob"; r.Email = "bob@example.bf"; r.Classe = "7eme" }, "classe"},
		{"bad username", func(r *SignupRequest) { r.Username = "bob marley"; r.Email = "bob@example.bf" }, "username"},
		{"guest namespace", func(r *SignupRequest) { r.Username = "anonyme_deadbeef"; r.Email = "bob@example.bf" }, "username"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validSignup()
			tt.edit(&req)
			_, err := auth.Signup(ctx, req)
			requireKind(t, err, apperr.KindValidation)

			var appErr *apperr.Error
			require.True(t, errors.As(err, &appErr))
			assert.Contains(t, appErr.Fields, tt.field)
		})
	}
}

func TestSignup_MailFailureDoesNotFailSignup(t *testing.T) {
	db := dbtest.New(t)
	auth := newAuthService(t, db, &recordingMailer{err: errors.New("ses down")})
	_, err := auth.Signup(context.Background(), validSignup())
	require.NoError(t, err)
}

func TestLogin_RejectsGuests(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	auth := newAuthService(t, db, nil)

	_, err := newTestGuests(db).ResolveProfile(ctx, Identity{SessionKey: "0123456789abcdef"}, "cp1")
	require.NoError(t, err)

	_, err = auth.Login(ctx, "anonyme_01234567", "x")
	requireKind(t, err, apperr.KindValidation)
}

func TestProfileService_Update(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	auth := newAuthService(t, db, nil)
	profiles := NewProfileService(db, nil)

	res, err := auth.Signup(ctx, validSignup())
	require.NoError(t, err)
	other := validSignup()
	other.Username, other.Email = "moussa", "moussa@example.bf"
	_, err = auth.Signup(ctx, other)
	require.NoError(t, err)

	id := Identity{UserID: res.User.ID, Username: res.User.Username}

	classe := "6EME"
	photo := "https://cdn.example.bf/awa.png"
	last := "Ouédraogo"
	updated, err := profiles.Update(ctx, id, models.ProfileUpdate{Classe: &classe, PhotoProfil: &photo, LastName: &last})
	require.NoError(t, err)
	assert.Equal(t, "6eme", updated.Classe)
	require.NotNil(t, updated.PhotoProfil)
	assert.Equal(t, photo, *updated.PhotoProfil)
	assert.Equal(t, "Ouédraogo", updated.User.LastName)
	assert.Equal(t, "Awa", updated.User.FirstName)

	taken := "moussa@example.bf"
	_, err = profiles.Update(ctx, id, models.ProfileUpdate{Email: &taken})
	requireKind(t, err, apperr.KindValidation)

	bad := "cp9"
	_, err = profiles.Update(ctx, id, models.ProfileUpdate{Classe: &bad})
	requireKind(t, err, apperr.KindValidation)

	_, err = profiles.Mine(ctx, Identity{SessionKey: "x"})
	requireKind(t, err, apperr.KindUnauthorized)
	_, err = profiles.Mine(ctx, Identity{UserID: 999})
	requireKind(t, err, apperr.KindProfileNotFound)
}

type fakeSES struct {
	inputs []*sesv2.SendEmailInput
	err    error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestEmailService_SendWelcomeEmail(t *testing.T) {
	ses := &fakeSES{}
	svc := newEmailService(ses, "noreply@faso.bf", "FASO Tuteur", "https://faso.bf", nil)
	require.True(t, svc.IsEnabled())

	require.NoError(t, svc.SendWelcomeEmail(context.Background(), "awa@example.bf", "Awa <3", "1ere_c"))
	require.Len(t, ses.inputs, 1)

	in := ses.inputs[0]
	assert.Equal(t, "FASO Tuteur <noreply@faso.bf>", aws.ToString(in.FromEmailAddress))
	assert.Equal(t, []string{"awa@example.bf"}, in.Destination.ToAddresses)
	body := aws.ToString(in.Content.Simple.Body.Html.Data)
	assert.Contains(t, body, "Awa &lt;3")
	assert.Contains(t, body, "1ère C")
	assert.Contains(t, aws.ToString(in.Content.Simple.Body.Text.Data), "https://faso.bf")

	ses.err = errors.New("throttled")
	assert.Error(t, svc.SendWelcomeEmail(context.Background(), "awa@example.bf", "Awa", "cm2"))
}

func TestEmailService_Disabled(t *testing.T) {
	svc, err := NewEmailService(context.Background(), "eu-west-1", "", "", "", nil)
	require.NoError(t, err)
	assert.False(t, svc.IsEnabled())
	assert.NoError(t, svc.SendWelcomeEmail(context.Background(), "a@b.bf", "A", "cp1"))

	var nilSvc *EmailService
	assert.False(t, nilSvc.IsEnabled())
	assert.NoError(t, nilSvc.SendWelcomeEmail(context.Background(), "a@b.bf", "A", "cp1"))
}

package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/cradoe/carvest/internal/models"
	"github.com/cradoe/carvest/internal/request"
	"github.com/cradoe/carvest/internal/response"
	"github.com/cradoe/carvest/internal/validator"

	"github.com/cradoe/gopass"
	"github.com/pascaldekloe/jwt"
)

const tokenLifetime = 24 * time.Hour

// HandleAuthRegister creates a regular user account. Registration can be
// switched off from the platform settings.
func (h *RouteHandler) HandleAuthRegister(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name      string              `json:"name"`
		Email     string              `json:"email"`
		Password  string              `json:"password"`
		Country   string              `json:"country"`
		Currency  string              `json:"currency"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	current, err := h.Settings.Get(r.Context())
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !current.AllowNewRegistrations {
		h.ErrHandler.Forbidden(w, r, "New registrations are currently closed")
		return
	}

	// password rules are reported before anything else
	_, errs := gopass.Validate(input.Password)
	if errs != nil {
		h.ErrHandler.FailedValidation(w, r, errs)
		return
	}

	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	input.Validator.Check(validator.NotBlank(input.Name), "Name is required")
	input.Validator.Check(len(input.Name) >= 3, "Name is too short")
	input.Validator.Check(validator.NotBlank(input.Email), "Email is required")
	input.Validator.Check(validator.IsEmail(input.Email), "Must be a valid email address")
	input.Validator.Check(input.Currency == "" || len(input.Currency) == 3, "Currency must be a 3 letter code")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	_, found, err := h.DB.User().GetByEmail(r.Context(), input.Email)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if found {
		h.ErrHandler.FailedValidation(w, r, []string{"Email is already in use"})
		return
	}

	hashedPassword, err := gopass.Hash(input.Password)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	user := &models.User{
		Name:           input.Name,
		Email:          input.Email,
		HashedPassword: hashedPassword,
		Country:        input.Country,
		Currency:       strings.ToUpper(input.Currency),
		Active:         true,
		CanWithdraw:    true,
	}

	tx, err := h.DB.BeginTx(r.Context(), nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	defer tx.Rollback()

	if err = h.DB.User().Insert(r.Context(), tx, user); err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	metadata, _ := json.Marshal(map[string]any{"email": user.Email})
	err = h.DB.Audit().Insert(r.Context(), tx, &models.AuditLog{
		ActorID:   &user.ID,
		UserID:    &user.ID,
		Entity:    models.AuditEntityUser,
		EntityID:  user.ID,
		Action:    models.AuditActionUserRegistered,
		Metadata:  metadata,
		CreatedAt: user.CreatedAt,
	})
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if err := tx.Commit(); err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if h.Mailer != nil && h.Helper != nil {
		h.Helper.BackgroundTask("welcome email", func() error {
			emailData := h.Helper.NewEmailData()
			emailData["Name"] = user.Name

			return h.Mailer.Send(user.Email, emailData, "welcome.tmpl")
		})
	}

	err = response.JSONCreatedResponse(w, newUserResponse(user), "Account created successfully")
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *RouteHandler) HandleAuthLogin(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email     string              `json:"email"`
		Password  string              `json:"password"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Email), "Email is required")
	input.Validator.Check(validator.NotBlank(input.Password), "Password is required")
	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	user, found, err := h.DB.User().GetByEmail(r.Context(), input.Email)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	passwordMatches := false
	if found {
		passwordMatches, err = gopass.ComparePasswordAndHash(input.Password, user.HashedPassword)
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
			return
		}
	}

	if !passwordMatches {
		h.ErrHandler.FailedValidation(w, r, []string{"Incorrect email/password"})
		return
	}

	if !user.Active {
		h.ErrHandler.InactiveAccount(w, r)
		return
	}

	token, expiry, err := h.issueToken(user.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := map[string]string{
		"auth_token":   token,
		"token_expiry": expiry.Format(time.RFC3339),
		"role":         string(user.Role),
	}

	err = response.JSONOkResponse(w, data, "Login successful", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *RouteHandler) issueToken(userID string) (string, time.Time, error) {
	now := time.Now()
	expiry := now.Add(tokenLifetime)

	var claims jwt.Claims
	claims.Subject = userID
	claims.Issued = jwt.NewNumericTime(now)
	claims.NotBefore = jwt.NewNumericTime(now)
	claims.Expires = jwt.NewNumericTime(expiry)
	claims.Issuer = h.Config.BaseURL
	claims.Audiences = []string{h.Config.BaseURL}

	jwtBytes, err := claims.HMACSign(jwt.HS256, []byte(h.Config.Jwt.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}

	return string(jwtBytes), expiry, nil
}

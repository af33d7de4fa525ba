package forms

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/bcards/internal/client/models"
	"github.com/dmitrijs2005/bcards/internal/client/services"
	"github.com/dmitrijs2005/bcards/internal/client/session"
	"github.com/dmitrijs2005/bcards/internal/client/validation"
	"github.com/dmitrijs2005/bcards/internal/common"
	"github.com/dmitrijs2005/bcards/internal/logging"
)

const (
	MsgNoToken          = "Login failed: No token returned."
	MsgBadCredentials   = "Login failed. Please check your credentials."
	MsgRegisterFailed   = "Registration failed. Please try again."
	MsgCreateFailed     = "Failed to create card."
	MsgAlreadyLoggedIn  = "You are already logged in."
	MsgLoginFirst       = "Please login first."
	MsgBusinessOnly     = "Only Business users can create cards."
	MsgBusinessOrAdmin  = "Only Business or Admin users can view their cards."
	MsgUnexpectedFailed = "An unexpected error occurred."
)

// NewLoginForm builds the login form. On success the session holds the
// decoded user and the form redirects home.
func NewLoginForm(auth services.AuthService, sess Observable, logger logging.Logger) *Form {
	return newForm(config{
		name:   "login",
		schema: validation.LoginSchema(),
		submit: func(ctx context.Context, v validation.Values) error {
			_, err := auth.Login(ctx, models.Credentials{
				Email:    strings.TrimSpace(v["email"]),
				Password: v["password"],
			})
			return err
		},
		onSuccess: Redirect{To: "/", Notice: "Login successful!"},
		message: func(err error) string {
			switch {
			case errors.Is(err, common.ErrNoToken):
				return MsgNoToken
			case errors.Is(err, common.ErrInvalidToken):
				return MsgUnexpectedFailed
			}
			return MsgBadCredentials
		},
	}, sess, logger)
}

// NewRegisterForm builds the sign-up form. It is closed for a signed-in
// user; on success the user is sent to log in.
func NewRegisterForm(auth services.AuthService, sess Observable, logger logging.Logger) *Form {
	return newForm(config{
		name:   "register",
		schema: validation.RegistrationSchema(),
		guard: func(s session.Snapshot) *Redirect {
			if s.LoggedIn {
				return &Redirect{To: "/", Notice: MsgAlreadyLoggedIn}
			}
			return nil
		},
		submit: func(ctx context.Context, v validation.Values) error {
			return auth.Register(ctx, registrationFrom(v))
		},
		onSuccess: Redirect{To: "/login", Notice: "Registration successful! Please log in."},
		message:   func(error) string { return MsgRegisterFailed },
	}, sess, logger)
}

// NewCardGuard admits signed-in business users.
func NewCardGuard(s session.Snapshot) *Redirect {
	if !s.LoggedIn || s.Token == "" {
		return &Redirect{To: "/login", Notice: MsgLoginFirst}
	}
	if !s.User.IsBusiness {
		return &Redirect{To: "/", Notice: MsgBusinessOnly}
	}
	return nil
}

// MyCardsGuard admits signed-in business or admin users.
func MyCardsGuard(s session.Snapshot) *Redirect {
	if !s.LoggedIn || s.Token == "" {
		return &Redirect{To: "/login", Notice: MsgLoginFirst}
	}
	if !s.User.CanManageCards() {
		return &Redirect{To: "/", Notice: MsgBusinessOrAdmin}
	}
	return nil
}

// NewCardForm builds the create-card form.
func NewCardForm(cards services.CardService, sess Observable, logger logging.Logger) *Form {
	return newForm(config{
		name:   "new-card",
		schema: validation.NewCardSchema(),
		guard:  NewCardGuard,
		submit: func(ctx context.Context, v validation.Values) error {
			_, err := cards.Create(ctx, cardInputFrom(v))
			return err
		},
		onSuccess: Redirect{To: "/my-cards", Notice: "Card created successfully!"},
		message:   func(error) string { return MsgCreateFailed },
	}, sess, logger)
}

func registrationFrom(v validation.Values) models.Registration {
	isBusiness, _ := validation.ParseBool(v["isBusiness"])
	return models.Registration{
		Name: models.Name{
			First:  strings.TrimSpace(v["name.first"]),
			Middle: strings.TrimSpace(v["name.middle"]),
			Last:   strings.TrimSpace(v["name.last"]),
		},
		Phone:      strings.TrimSpace(v["phone"]),
		Email:      strings.TrimSpace(v["email"]),
		Password:   v["password"],
		Image:      imageFrom(v),
		Address:    addressFrom(v),
		IsBusiness: isBusiness,
	}
}

func cardInputFrom(v validation.Values) models.CardInput {
	return models.CardInput{
		Title:       strings.TrimSpace(v["title"]),
		Subtitle:    strings.TrimSpace(v["subtitle"]),
		Description: strings.TrimSpace(v["description"]),
		Phone:       strings.TrimSpace(v["phone"]),
		Email:       strings.TrimSpace(v["email"]),
		Web:         strings.TrimSpace(v["web"]),
		Image:       imageFrom(v),
		Address:     addressFrom(v),
	}
}

func imageFrom(v validation.Values) models.Image {
	return models.Image{URL: strings.TrimSpace(v["image.url"]), Alt: strings.TrimSpace(v["image.alt"])}
}

func addressFrom(v validation.Values) models.Address {
	return models.Address{
		State:       strings.TrimSpace(v["address.state"]),
		Country:     strings.TrimSpace(v["address.country"]),
		City:        strings.TrimSpace(v["address.city"]),
		Street:      strings.TrimSpace(v["address.street"]),
		HouseNumber: atoi(v["address.houseNumber"]),
		Zip:         atoi(v["address.zip"]),
	}
}

// atoi reads an already validated number; empty means zero.
func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

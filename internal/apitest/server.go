// Package apitest runs an in-memory bcard2 API on httptest for tests.
//
// Tokens are HS256-signed with the same claim layout as the real API, ids
// are generated with xid, and every request is recorded so tests can assert
// on how many calls reached the network.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/bcards/internal/client/models"
	"github.com/dmitrijs2005/bcards/internal/client/session"
	"github.com/dmitrijs2005/bcards/internal/common"
)

// BasePath is where the API is mounted, matching the production host.
const BasePath = "/bcard2"

// Route patterns, as passed to Hits and Fail.
const (
	RouteListCards  = "GET /cards"
	RouteMyCards    = "GET /cards/my-cards"
	RouteGetCard    = "GET /cards/{id}"
	RouteCreateCard = "POST /cards"
	RouteLikeCard   = "PATCH /cards/{id}"
	RouteDeleteCard = "DELETE /cards/{id}"
	RouteRegister   = "POST /users"
	RouteLogin      = "POST /users/login"
)

// Request is one recorded call.
type Request struct {
	Route     string
	Token     string
	RequestID string
	Body      []byte
}

type account struct {
	user  models.User
	email string
	hash  []byte
}

// newAccount hashes password at the minimum cost to keep tests fast.
func newAccount(email, password string, u models.User) (*account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return &account{user: u, email: email, hash: hash}, nil
}

func (a *account) checkPassword(password string) bool {
	return bcrypt.CompareHashAndPassword(a.hash, []byte(password)) == nil
}

type failure struct {
	status int
	body   string
}

// Server is a fake bcard2 API.
type Server struct {
	srv *httptest.Server

	// URL is the API base, including BasePath.
	URL string

	// secret signs tokens; each server gets its own.
	secret []byte

	mu        sync.Mutex
	accounts  map[string]*account
	cards     []models.Card
	requests  []Request
	failures  map[string]failure
	nextBiz   int
	tokenTTL  time.Duration
	tokenJSON bool
	now       func() time.Time
}

// New starts a server that is closed when t finishes.
func New(t testing.TB) *Server {
	t.Helper()

	secret, err := common.MakeRandHexString(32)
	if err != nil {
		t.Fatalf("signing secret: %v", err)
	}

	s := &Server{
		secret:   []byte(secret),
		accounts: make(map[string]*account),
		failures: make(map[string]failure),
		nextBiz:  1000000,
		tokenTTL: time.Hour,
		now:      time.Now,
	}
	s.srv = httptest.NewServer(s.routes())
	s.URL = s.srv.URL + BasePath
	t.Cleanup(s.srv.Close)

	return s
}

// Close stops the server early, e.g. to simulate an unreachable API.
func (s *Server) Close() {
	s.srv.Close()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Route(BasePath, func(r chi.Router) {
		r.Get("/cards", s.handle(RouteListCards, s.listCards))
		r.Post("/cards", s.handle(RouteCreateCard, s.createCard))
		r.Get("/cards/my-cards", s.handle(RouteMyCards, s.myCards))
		r.Get("/cards/{id}", s.handle(RouteGetCard, s.getCard))
		r.Patch("/cards/{id}", s.handle(RouteLikeCard, s.likeCard))
		r.Delete("/cards/{id}", s.handle(RouteDeleteCard, s.deleteCard))
		r.Post("/users", s.handle(RouteRegister, s.register))
		r.Post("/users/login", s.handle(RouteLogin, s.login))
	})

	return r
}

// handle records the request and applies any injected failure before
// calling h with the server lock held.
func (s *Server) handle(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = readAll(r)
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		s.requests = append(s.requests, Request{
			Route:     route,
			Token:     r.Header.Get(common.AuthTokenHeaderName),
			RequestID: r.Header.Get(common.RequestIDHeaderName),
			Body:      body,
		})

		if f, ok := s.failures[route]; ok {
			writeText(w, f.status, f.body)
			return
		}

		h(w, withBody(r, body))
	}
}

// Fail makes every later call to route answer with status and body.
func (s *Server) Fail(route string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = failure{status: status, body: body}
}

// Recover removes an injected failure.
func (s *Server) Recover(route string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, route)
}

// LoginReturnsObject switches the login response from a bare token string
// to {"token": "..."}.
func (s *Server) LoginReturnsObject(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenJSON = v
}

// SetTokenTTL changes the lifetime of tokens issued from now on.
func (s *Server) SetTokenTTL(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenTTL = d
}

// Hits returns how many requests reached route.
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, r := range s.requests {
		if r.Route == route {
			n++
		}
	}
	return n
}

// Requests returns a copy of every recorded request.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.requests)
}

// TotalHits counts all requests.
func (s *Server) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// AddUser registers an account directly and returns the stored user.
func (s *Server) AddUser(email, password string, u models.User) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == "" {
		u.ID = xid.New().String()
	}
	acc, err := newAccount(email, password, u)
	if err != nil {
		panic(err)
	}
	s.accounts[email] = acc
	return u
}

// AddCard stores c, filling in id, bizNumber and createdAt when empty.
func (s *Server) AddCard(c models.Card) models.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addCardLocked(c)
}

func (s *Server) addCardLocked(c models.Card) models.Card {
	if c.ID == "" {
		c.ID = xid.New().String()
	}
	if c.BizNumber == 0 {
		c.BizNumber = s.nextBiz
		s.nextBiz++
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now().UTC().Truncate(time.Second)
	}
	if c.Likes == nil {
		c.Likes = []string{}
	}
	s.cards = append(s.cards, c)
	return c
}

// Card returns the stored card with id.
func (s *Server) Card(id string) (models.Card, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return models.Card{}, false
	}
	return s.cards[i], true
}

// Cards returns a copy of all stored cards.
func (s *Server) Cards() []models.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.cards)
}

// Token issues a signed token for u, as login would.
func (s *Server) Token(u models.User) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok, err := s.tokenLocked(u)
	if err != nil {
		panic(err)
	}
	return tok
}

func (s *Server) tokenLocked(u models.User) (string, error) {
	now := s.now()
	claims := session.Claims{
		UserID:     u.ID,
		Name:       u.Name,
		IsBusiness: u.IsBusiness,
		IsAdmin:    u.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// authenticate validates the request token and returns the caller.
func (s *Server) authenticate(r *http.Request) (models.User, bool) {
	raw := r.Header.Get(common.AuthTokenHeaderName)
	if raw == "" {
		return models.User{}, false
	}

	var claims session.Claims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || claims.UserID == "" {
		return models.User{}, false
	}

	return models.User{
		ID:         claims.UserID,
		Name:       claims.Name,
		IsBusiness: claims.IsBusiness,
		IsAdmin:    claims.IsAdmin,
	}, true
}

func (s *Server) indexLocked(id string) int {
	return slices.IndexFunc(s.cards, func(c models.Card) bool { return c.ID == id })
}

func (s *Server) listCards(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.cards)
}

func (s *Server) myCards(w http.ResponseWriter, r *http.Request) {
	u, ok := s.authenticate(r)
	if !ok {
		writeText(w, http.StatusUnauthorized, "Authentication Error: Please Login")
		return
	}
	if !u.CanManageCards() {
		writeText(w, http.StatusForbidden, "Authorization Error: Only business users can see their cards")
		return
	}

	mine := []models.Card{}
	for _, c := range s.cards {
		if c.UserID == u.ID {
			mine = append(mine, c)
		}
	}
	writeJSON(w, http.StatusOK, mine)
}

func (s *Server) getCard(w http.ResponseWriter, r *http.Request) {
	i := s.indexLocked(chi.URLParam(r, "id"))
	if i < 0 {
		writeText(w, http.StatusNotFound, "Card not found")
		return
	}
	writeJSON(w, http.StatusOK, s.cards[i])
}

func (s *Server) createCard(w http.ResponseWriter, r *http.Request) {
	u, ok := s.authenticate(r)
	if !ok {
		writeText(w, http.StatusUnauthorized, "Authentication Error: Please Login")
		return
	}
	if !u.IsBusiness {
		writeText(w, http.StatusForbidden, "Authorization Error: Only business users can create cards")
		return
	}

	var in models.CardInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Title == "" {
		writeText(w, http.StatusBadRequest, "Invalid card data")
		return
	}

	c := s.addCardLocked(models.Card{
		Title:       in.Title,
		Subtitle:    in.Subtitle,
		Description: in.Description,
		Phone:       in.Phone,
		Email:       in.Email,
		Web:         in.Web,
		Image:       in.Image,
		Address:     in.Address,
		UserID:      u.ID,
	})
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) likeCard(w http.ResponseWriter, r *http.Request) {
	u, ok := s.authenticate(r)
	if !ok {
		writeText(w, http.StatusUnauthorized, "Authentication Error: Please Login")
		return
	}

	i := s.indexLocked(chi.URLParam(r, "id"))
	if i < 0 {
		writeText(w, http.StatusNotFound, "Card not found")
		return
	}

	c := &s.cards[i]
	if j := slices.Index(c.Likes, u.ID); j >= 0 {
		c.Likes = slices.Delete(c.Likes, j, j+1)
	} else {
		c.Likes = append(c.Likes, u.ID)
	}
	writeJSON(w, http.StatusOK, *c)
}

func (s *Server) deleteCard(w http.ResponseWriter, r *http.Request) {
	u, ok := s.authenticate(r)
	if !ok {
		writeText(w, http.StatusUnauthorized, "Authentication Error: Please Login")
		return
	}

	i := s.indexLocked(chi.URLParam(r, "id"))
	if i < 0 {
		writeText(w, http.StatusNotFound, "Card not found")
		return
	}

	c := s.cards[i]
	if c.UserID != u.ID && !u.IsAdmin {
		writeText(w, http.StatusForbidden, "Authorization Error: Only the owner or an admin can delete this card")
		return
	}

	s.cards = slices.Delete(s.cards, i, i+1)
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var reg struct {
		models.Registration
		IsAdmin *bool `json:"isAdmin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil || reg.Email == "" || reg.Password == "" {
		writeText(w, http.StatusBadRequest, "Invalid user data")
		return
	}
	if reg.IsAdmin != nil {
		writeText(w, http.StatusBadRequest, `"isAdmin" is not allowed`)
		return
	}
	if _, exists := s.accounts[reg.Email]; exists {
		writeText(w, http.StatusBadRequest, "User already registered")
		return
	}

	u := models.User{
		ID:         xid.New().String(),
		Name:       reg.Name,
		IsBusiness: reg.IsBusiness,
	}
	acc, err := newAccount(reg.Email, reg.Password, u)
	if err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}
	s.accounts[reg.Email] = acc

	writeJSON(w, http.StatusCreated, map[string]any{
		"_id":   u.ID,
		"name":  u.Name,
		"email": reg.Email,
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeText(w, http.StatusBadRequest, "Invalid login data")
		return
	}

	acc, ok := s.accounts[creds.Email]
	if !ok || !acc.checkPassword(creds.Password) {
		writeText(w, http.StatusBadRequest, "Invalid email or password")
		return
	}

	tok, err := s.tokenLocked(acc.user)
	if err != nil {
		writeText(w, http.StatusInternalServerError, err.Error())
		return
	}

	if s.tokenJSON {
		writeJSON(w, http.StatusOK, map[string]string{"token": tok})
		return
	}
	writeText(w, http.StatusOK, tok)
}

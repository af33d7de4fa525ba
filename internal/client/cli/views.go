package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/bcards/internal/client/client"
	"github.com/dmitrijs2005/bcards/internal/client/forms"
	"github.com/dmitrijs2005/bcards/internal/client/models"
	"github.com/dmitrijs2005/bcards/internal/client/nav"
	"github.com/dmitrijs2005/bcards/internal/common"
)

const maxRedirects = 3

// Open navigates to path and renders the matching view.
func (a *App) Open(ctx context.Context, path string) error {
	return a.open(ctx, path, 0)
}

func (a *App) open(ctx context.Context, path string, depth int) error {
	if depth > maxRedirects {
		return fmt.Errorf("too many redirects at %s", path)
	}

	route := a.router.Resolve(path)
	a.route = route
	a.logger.Debug(ctx, "open view", "path", route.Path, "view", route.View)

	follow := func(r forms.Redirect) error {
		if r.Notice != "" {
			a.println(r.Notice)
		}
		return a.open(ctx, r.To, depth+1)
	}

	switch route.View {
	case nav.ViewHome:
		return a.home(ctx)
	case nav.ViewAbout:
		a.about()
		return nil
	case nav.ViewLogin:
		return a.runForm(ctx, forms.NewLoginForm(a.auth, a.session, a.logger), follow)
	case nav.ViewRegister:
		return a.runForm(ctx, forms.NewRegisterForm(a.auth, a.session, a.logger), follow)
	case nav.ViewNewCard:
		return a.runForm(ctx, forms.NewCardForm(a.cards, a.session, a.logger), follow)
	case nav.ViewFavCards:
		if !a.isLoggedIn() {
			return follow(forms.Redirect{To: "/login", Notice: forms.MsgLoginFirst})
		}
		return a.favorites(ctx)
	case nav.ViewMyCards:
		if r := forms.MyCardsGuard(a.session.Snapshot()); r != nil {
			return follow(*r)
		}
		return a.myCards(ctx)
	case nav.ViewCard:
		return a.card(ctx, route.CardID)
	case nav.ViewProfile:
		if !a.isLoggedIn() {
			return follow(forms.Redirect{To: "/login", Notice: forms.MsgLoginFirst})
		}
		a.profile()
		return nil
	default:
		a.println("Page not found: " + route.Path)
		return nil
	}
}

func (a *App) home(ctx context.Context) error {
	if err := a.listing.Load(ctx); err != nil {
		a.println("Could not load cards: " + describe(err))
		return err
	}
	a.renderPage()
	return nil
}

// renderPage prints the current page of the home listing.
func (a *App) renderPage() {
	a.Header()

	title := "All cards"
	if q := a.listing.Query(); q != "" {
		title = fmt.Sprintf("Cards starting with %q", q)
	}
	total := a.listing.TotalPages()
	a.printf("%s (page %d of %d)\n", title, a.listing.CurrentPage(), max(total, 1))

	page := a.listing.Page()
	if len(page) == 0 {
		a.println("  No cards found.")
		return
	}
	for _, c := range page {
		a.println("  " + a.cardLine(c))
	}

	window := a.listing.PageWindow()
	if len(window) > 1 {
		parts := make([]string, len(window))
		for i, n := range window {
			if n == a.listing.CurrentPage() {
				parts[i] = fmt.Sprintf("[%d]", n)
			} else {
				parts[i] = fmt.Sprint(n)
			}
		}
		a.println("Pages: " + strings.Join(parts, " "))
	}
}

func (a *App) cardLine(c models.Card) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s", c.ID, c.Title)
	if c.Subtitle != "" {
		fmt.Fprintf(&b, " - %s", c.Subtitle)
	}
	if a.isLoggedIn() {
		if a.listing.IsLiked(c.ID) {
			b.WriteString("  [liked]")
		}
		if a.listing.IsUnconfirmed(c.ID) {
			b.WriteString(" (not saved)")
		}
	}
	if a.listing.IsFading(c.ID) {
		b.WriteString("  (removing)")
	}
	return b.String()
}

func (a *App) favorites(ctx context.Context) error {
	if err := a.listing.Load(ctx); err != nil {
		a.println("Could not load cards: " + describe(err))
		return err
	}
	a.renderFavorites()
	return nil
}

func (a *App) renderFavorites() {
	a.Header()
	a.println("Favorite cards")

	favs := a.listing.Favorites()
	if len(favs) == 0 {
		a.println("  You have no favorite cards yet.")
		return
	}
	for _, c := range favs {
		a.println("  " + a.cardLine(c))
	}
}

func (a *App) myCards(ctx context.Context) error {
	if err := a.mine.Load(ctx); err != nil {
		a.println("Could not load your cards: " + describe(err))
		return err
	}
	a.renderMyCards()
	return nil
}

func (a *App) renderMyCards() {
	a.Header()
	a.println("My cards")

	items := a.mine.Items()
	if len(items) == 0 {
		a.println("  You have not created any cards yet. Use 'newcard' to add one.")
		return
	}
	for _, c := range items {
		a.printf("  %s  %s - %s (biz #%d)\n", c.ID, c.Title, c.Subtitle, c.BizNumber)
	}
}

func (a *App) card(ctx context.Context, id string) error {
	c, err := a.cards.Get(ctx, id)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			a.println("Card not found: " + id)
		} else {
			a.println("Could not load card: " + describe(err))
		}
		return err
	}

	a.Header()
	a.println(c.Title)
	if c.Subtitle != "" {
		a.println(c.Subtitle)
	}
	if c.Description != "" {
		a.println()
		a.println(c.Description)
		a.println()
	}
	a.printf("Phone:   %s\n", orNA(c.Phone))
	a.printf("Email:   %s\n", orNA(c.Email))
	a.printf("Web:     %s\n", orNA(c.Web))
	a.printf("Address: %s\n", c.Address)
	if c.BizNumber != 0 {
		a.printf("Biz #:   %d\n", c.BizNumber)
	}
	a.printf("Likes:   %d\n", len(c.Likes))
	if c.Image.URL != "" {
		a.printf("Image:   %s\n", c.Image.URL)
	}
	return nil
}

func (a *App) profile() {
	a.Header()
	snap := a.session.Snapshot()
	u := snap.User

	role := "Regular"
	switch {
	case u.IsAdmin:
		role = "Admin"
	case u.IsBusiness:
		role = "Business"
	}

	a.printf("Name: %s\n", orNA(u.Name.String()))
	a.printf("ID:   %s\n", u.ID)
	a.printf("Role: %s\n", role)
	if !snap.ExpiresAt.IsZero() {
		a.printf("Session ends: %s\n", snap.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
}

func (a *App) about() {
	a.Header()
	a.println("About BCard")
	a.println("BCard lets businesses publish digital business cards and lets everyone")
	a.println("browse them. Sign up to like cards and keep favorites; business")
	a.println("accounts can create and manage their own cards.")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// describe turns an error into a short message for the user.
func describe(err error) string {
	switch {
	case errors.Is(err, common.ErrNotAuthenticated):
		return forms.MsgLoginFirst
	case errors.Is(err, common.ErrNotBusiness):
		return "this action needs a business account"
	case errors.Is(err, client.ErrUnavailable):
		return "the service is unreachable, try again later"
	case errors.Is(err, client.ErrUnauthorized):
		return "your session is no longer valid, please log in again"
	case errors.Is(err, client.ErrForbidden):
		return "you are not allowed to do that"
	case errors.Is(err, client.ErrNotFound):
		return "not found"
	}

	var se *client.ServerError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return err.Error()
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/bcards/internal/client/listing"
	"github.com/dmitrijs2005/bcards/internal/client/nav"
	"github.com/dmitrijs2005/bcards/internal/common"
)

var errNotOnListing = errors.New("not on the card listing")

// onListing makes sure the home listing is the current view, opening it
// when another view is shown.
func (a *App) onListing(ctx context.Context) error {
	if a.route.View == nav.ViewHome {
		return nil
	}
	return a.Open(ctx, "/")
}

// Search filters the home listing by title prefix. An empty query clears
// the filter.
func (a *App) Search(ctx context.Context, q string) error {
	if err := a.onListing(ctx); err != nil {
		return err
	}
	a.listing.SetQuery(q)
	a.renderPage()
	return nil
}

// Page jumps to page n of the listing; out-of-range values are clamped.
func (a *App) Page(ctx context.Context, arg string) error {
	n, err := strconv.Atoi(arg)
	if err != nil {
		a.println("Usage: page <number>")
		return fmt.Errorf("page %q: %w", arg, err)
	}
	if err := a.onListing(ctx); err != nil {
		return err
	}
	a.listing.SetPage(n)
	a.renderPage()
	return nil
}

func (a *App) Next(ctx context.Context) error {
	if err := a.onListing(ctx); err != nil {
		return err
	}
	a.listing.Next()
	a.renderPage()
	return nil
}

func (a *App) Prev(ctx context.Context) error {
	if err := a.onListing(ctx); err != nil {
		return err
	}
	a.listing.Prev()
	a.renderPage()
	return nil
}

// Like toggles the like on card id from the home or favorites view.
func (a *App) Like(ctx context.Context, id string) error {
	if !a.isLoggedIn() {
		a.println(listing.MsgLoginToLike)
		return common.ErrNotAuthenticated
	}
	if _, ok := a.listing.Find(id); !ok {
		if err := a.listing.Load(ctx); err != nil {
			a.println("Could not load cards: " + describe(err))
			return err
		}
		if _, ok := a.listing.Find(id); !ok {
			a.println("Card not found: " + id)
			return errNotOnListing
		}
	}

	liked, err := a.listing.ToggleLike(ctx, id)
	if errors.Is(err, common.ErrNotAuthenticated) {
		a.println(listing.MsgLoginToLike)
		return err
	}
	if err != nil {
		a.println("Could not save your like: " + describe(err))
	} else if liked {
		a.println("Added to favorites.")
	} else {
		a.println("Removed from favorites.")
	}

	switch a.route.View {
	case nav.ViewFavCards:
		a.renderFavorites()
	case nav.ViewHome:
		a.renderPage()
	}
	return err
}

// Unlike removes a card from favorites. It only acts on liked cards.
func (a *App) Unlike(ctx context.Context, id string) error {
	if !a.listing.IsLiked(id) {
		a.println("Card is not in your favorites: " + id)
		return errNotOnListing
	}
	return a.Like(ctx, id)
}

// Delete removes one of the user's own cards after confirmation.
func (a *App) Delete(ctx context.Context, id string) error {
	if a.route.View != nav.ViewMyCards {
		if err := a.Open(ctx, "/my-cards"); err != nil {
			return err
		}
		if a.route.View != nav.ViewMyCards {
			return errNotOnListing
		}
	}

	title := ""
	for _, c := range a.mine.Items() {
		if c.ID == id {
			title = c.Title
		}
	}
	if title == "" {
		a.println("Card not found among your cards: " + id)
		return errNotOnListing
	}

	ok, err := Confirm(a.reader, fmt.Sprintf("Delete card %q?", title), a.out)
	if err != nil {
		return err
	}
	if !ok {
		a.println("Kept.")
		return nil
	}

	if err := a.mine.Delete(ctx, id); err != nil {
		a.println("Could not delete card: " + describe(err))
		return err
	}
	a.println("Card deleted.")
	a.renderMyCards()
	return nil
}

// Logout ends the session and returns to the home view.
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		a.println("You are not logged in.")
		return nil
	}
	a.signingOut.Store(true)
	err := a.auth.Logout(ctx)
	a.signingOut.Store(false)
	if err != nil {
		a.println("Logout failed: " + describe(err))
		return err
	}
	a.println("You have been logged out.")
	return a.Open(ctx, "/")
}

// Help lists the commands available to the current user.
func (a *App) Help() {
	a.println("Navigation: home, cards, about, open <path>, show <id>, help, exit")
	a.println("Listing:    search [text], page <n>, next, prev")
	if !a.isLoggedIn() {
		a.println("Account:    login, register")
		return
	}
	a.println("Cards:      like <id>, fav, unlike <id>")
	if u := a.currentUser(); u != nil && u.CanManageCards() {
		a.println("My cards:   mycards, delete <id>")
	}
	if u := a.currentUser(); u != nil && u.IsBusiness {
		a.println("            newcard")
	}
	a.println("Account:    profile, logout")
}

package services

import (
	"context"
	"errors"
	"time"

	"stockbook/internal/auth"
	"stockbook/internal/domain"
	"stockbook/internal/repos"
)

var ErrBadCreds = errors.New("invalid name or passcode")

type Session struct {
	Seller    *domain.Seller `json:"seller"`
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
}

type AuthService struct {
	Sellers *repos.SellerRepo
	Tokens  *auth.Tokens
}

// Signup is idempotent on name: an existing seller is returned as is, and then
// only a matching passcode yields a session.
func (s *AuthService) Signup(ctx context.Context, in domain.NewSeller) (*Session, error) {
	if _, err := s.Sellers.Create(ctx, in); err != nil {
		return nil, err
	}
	return s.Login(ctx, in.Name, in.Passcode)
}

func (s *AuthService) Login(ctx context.Context, name, passcode string) (*Session, error) {
	seller, err := s.Sellers.FindByCredentials(ctx, name, passcode)
	if err != nil {
		return nil, err
	}
	if seller == nil {
		return nil, ErrBadCreds
	}
	tok, exp, err := s.Tokens.Issue(seller.ID, seller.Name)
	if err != nil {
		return nil, err
	}
	return &Session{Seller: seller, Token: tok, ExpiresAt: exp}, nil
}

// CurrentSeller resolves a bearer token to a live seller; a deleted seller's token stops working.
func (s *AuthService) CurrentSeller(ctx context.Context, token string) (*domain.Seller, error) {
	claims, err := s.Tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	seller, err := s.Sellers.FindByID(ctx, claims.SellerID)
	if err != nil {
		return nil, err
	}
	if seller == nil {
		return nil, auth.ErrInvalidToken
	}
	return seller, nil
}

func (s *AuthService) ChangePasscode(ctx context.Context, sellerID int64, passcode string) error {
	return s.Sellers.UpdatePasscode(ctx, sellerID, passcode)
}

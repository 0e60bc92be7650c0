package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nurpe/academy-automation/internal/model"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Parser validates HS256 access tokens issued by the staff portal.
type Parser struct {
	secret []byte
	parser *jwt.Parser
}

func NewParser(secret string) *Parser {
	return &Parser{
		secret: []byte(secret),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}
}

func (p *Parser) Parse(tokenString string) (model.Principal, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return model.Principal{}, ErrInvalidToken
	}

	claims := &Claims{}
	token, err := p.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return p.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return model.Principal{}, ErrExpiredToken
		}
		return model.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return model.Principal{}, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return model.Principal{}, fmt.Errorf("%w: subject is not a staff id", ErrInvalidToken)
	}

	return model.Principal{
		UserID: userID,
		Role:   strings.TrimSpace(claims.Role),
	}, nil
}

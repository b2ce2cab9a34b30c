package auth

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const claimsKey contextKey = "claims"

func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func ClaimsFrom(ctx context.Context) *Claims {
	if c, _ := ctx.Value(claimsKey).(*Claims); c != nil {
		return c
	}
	return nil
}

// PsicologoIDFrom retorna o id do usuário autenticado como uuid, ou uuid.Nil.
// Todo handler extrai a identidade uma única vez daqui e a repassa explicitamente
// para repo/agenda/relatorio; nenhuma camada abaixo consulta o context.
func PsicologoIDFrom(ctx context.Context) uuid.UUID {
	c := ClaimsFrom(ctx)
	if c == nil {
		return uuid.Nil
	}
	id, err := uuid.Parse(c.UserID)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func NomeFrom(ctx context.Context) string {
	c := ClaimsFrom(ctx)
	if c == nil {
		return ""
	}
	return c.Nome
}

func TipoFrom(ctx context.Context) string {
	c := ClaimsFrom(ctx)
	if c == nil {
		return ""
	}
	return c.Tipo
}

func IsAdmin(ctx context.Context) bool {
	return TipoFrom(ctx) == TipoAdmin
}

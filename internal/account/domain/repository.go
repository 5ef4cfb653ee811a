package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	FindByEmail(ctx context.Context, email string) ([]CustomerAccount, error)
	FindByID(ctx context.Context, id snowflake.ID) (*CustomerAccount, error)
}

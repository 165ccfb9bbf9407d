package course

import (
	"context"
	"fmt"
	"net/http"

	"github.com/irsalhamdi/e-learning/api/web"
	"github.com/jmoiron/sqlx"
)

func HandleListStudents(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		courseID := web.Param(r, "id")

		students, err := FetchStudents(ctx, db, courseID)
		if err != nil {
			return fmt.Errorf("listing roster: %w", err)
		}

		return web.Respond(ctx, w, web.Envelope{Success: true, Data: students}, http.StatusOK)
	}
}

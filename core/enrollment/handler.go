package enrollment

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/irsalhamdi/e-learning/api/web"
	"github.com/irsalhamdi/e-learning/database"
	"github.com/jmoiron/sqlx"
)

// HandleList answers with the courses bought by the user in the path. A user
// without purchases owns an empty list.
func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		userID := web.Param(r, "user_id")

		rec, err := Fetch(ctx, db, userID)
		switch {
		case errors.Is(err, database.ErrDBNotFound):
			rec.Courses = []Entry{}
		case err != nil:
			return fmt.Errorf("fetching courses bought by user[%s]: %w", userID, err)
		}

		return web.Respond(ctx, w, web.Envelope{Success: true, Data: rec.Courses}, http.StatusOK)
	}
}

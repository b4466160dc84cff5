// Package notification turns account and pantry events into stored
// notifications. Each notification id is derived from the event, so a
// redelivered event finds its notification already there.
package notification

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const collectionName = "notifications"

type Kind string

const (
	KindWelcome      Kind = "WELCOME"
	KindUnitsExpired Kind = "STORAGE_UNITS_EXPIRED"
)

type Notification struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id,omitempty"`
	GroupID   int64     `bson:"group_id,omitempty"`
	Kind      Kind      `bson:"kind"`
	Title     string    `bson:"title"`
	Body      string    `bson:"body"`
	CreatedAt time.Time `bson:"created_at"`
}

var idNamespace = uuid.MustParse("6f1c2a3e-8b4d-5e6f-9a0b-1c2d3e4f5a6b")

// notificationID is a name-based UUID over the kind and the parts that make
// the event unique.
func notificationID(kind Kind, parts ...string) string {
	name := string(kind) + ":" + strings.Join(parts, ":")
	return uuid.NewSHA1(idNamespace, []byte(name)).String()
}

func welcomeID(userID string) string {
	return notificationID(KindWelcome, userID)
}

// unitsExpiredID does not depend on the order of unitIDs.
func unitsExpiredID(groupID int64, unitIDs []int64) string {
	ids := lo.Uniq(unitIDs)
	slices.Sort(ids)
	return notificationID(KindUnitsExpired, strconv.FormatInt(groupID, 10),
		strings.Join(lo.Map(ids, func(id int64, _ int) string { return strconv.FormatInt(id, 10) }), ","))
}

func welcomeBody(username string) string {
	if username == "" {
		return "Your account is ready. Start by creating a household group."
	}
	return fmt.Sprintf("Hi %s, your account is ready. Start by creating a household group.", username)
}

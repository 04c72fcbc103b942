package pipeline

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tgwatch/tgwatch/internal/types"
)

// MatchKeywords returns the subset of keywords matching text, case
// insensitive. Each keyword is first tried as a regular expression; a
// keyword that fails to compile falls back to a plain substring match, per
// the watch criteria's documented keyword semantics.
func MatchKeywords(text string, keywords []string) []string {
	if text == "" || len(keywords) == 0 {
		return nil
	}
	lowerText := strings.ToLower(text)
	var matched []string
	for _, keyword := range keywords {
		if keyword == "" {
			continue
		}
		if re, err := regexp.Compile("(?i)" + keyword); err == nil {
			if re.MatchString(text) {
				matched = append(matched, keyword)
			}
			continue
		}
		if strings.Contains(lowerText, strings.ToLower(keyword)) {
			matched = append(matched, keyword)
		}
	}
	return matched
}

// MatchUser returns the first active WatchUser in users monitoring
// (userID, username) within groupID, following the empty-group_ids-means-
// global-monitoring rule. Username comparison is case-insensitive.
func MatchUser(users []types.WatchUserDoc, userID int64, username string, groupID bson.ObjectID) *types.WatchUserDoc {
	lowerUsername := strings.ToLower(username)
	for i := range users {
		u := &users[i]
		if !u.IsActive {
			continue
		}
		byUsername := lowerUsername != "" && strings.ToLower(u.Username) == lowerUsername
		byUserID := u.UserID != 0 && userID != 0 && u.UserID == userID
		if !byUsername && !byUserID {
			continue
		}
		if len(u.GroupIDs) == 0 {
			return u
		}
		for _, g := range u.GroupIDs {
			if g == groupID {
				return u
			}
		}
	}
	return nil
}

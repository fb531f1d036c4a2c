package internal

import (
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// messageRow is one joined row from sms.db before threading: a message together
// with its chat identity and the chat's participant list.
type messageRow struct {
	ChatID         int64
	ChatIdentifier string
	Text           string
	TimestampNS    int64
	IsFromMe       bool
	Sender         string
	Participants   []string
}

// escapeLike escapes LIKE wildcards so a search term is a literal substring.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

// getMessageRows fetches the flat, joined message rows, ordered by timestamp
// ascending. A non-empty search term filters message text with a
// case-insensitive substring match (bound LIKE pattern, wildcards escaped).
// Grouping into conversations happens in memory, not in the store.
func getMessageRows(messageDB *sql.DB, search string) ([]messageRow, error) {
	query := `
		SELECT chat.ROWID, chat.chat_identifier, message.text, message.date,
		       message.is_from_me, handle.id,
		       (SELECT GROUP_CONCAT(handle.id, ',') FROM handle
		        JOIN chat_handle_join ON handle.ROWID = chat_handle_join.handle_id
		        WHERE chat_handle_join.chat_id = chat.ROWID) AS participants
		FROM message
		JOIN chat_message_join ON message.ROWID = chat_message_join.message_id
		JOIN chat ON chat.ROWID = chat_message_join.chat_id
		LEFT JOIN handle ON handle.ROWID = message.handle_id
	`

	args := []interface{}{}
	if search != "" {
		query += ` WHERE message.text LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(search)+"%")
	}

	query += " ORDER BY message.date ASC"

	slog.Debug("getMessageRows: executing query", "search", search)

	rows, err := messageDB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	result := []messageRow{}
	for rows.Next() {
		var r messageRow
		var text, sender, participants sql.NullString
		var isFromMe int

		err := rows.Scan(&r.ChatID, &r.ChatIdentifier, &text, &r.TimestampNS,
			&isFromMe, &sender, &participants)
		if err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}

		r.Text = text.String
		r.Sender = sender.String
		r.IsFromMe = isFromMe == 1
		if participants.Valid && participants.String != "" {
			r.Participants = strings.Split(participants.String, ",")
		}

		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate message rows: %w", err)
	}

	return result, nil
}

// groupConversations threads flat message rows into conversations. Rows must
// arrive ordered by timestamp ascending; the grouping pass preserves that order
// within each chat, then a second pass orders the conversations themselves by
// their latest message, newest first. Labels come from the request's
// ContactCache: the conversation is named after its first participant, each
// message after its sender.
func groupConversations(rows []messageRow, cache *ContactCache) ([]Conversation, error) {
	byChat := make(map[int64]*Conversation)
	ordered := []*Conversation{}

	for _, row := range rows {
		conv, ok := byChat[row.ChatID]
		if !ok {
			conv = &Conversation{
				ChatID:         row.ChatID,
				ChatIdentifier: row.ChatIdentifier,
				Participants:   row.Participants,
				Messages:       []Message{},
			}
			byChat[row.ChatID] = conv
			ordered = append(ordered, conv)
		}

		timestamp := FromAppleNanoseconds(row.TimestampNS)
		label, err := cache.DisplayLabel(row.Sender)
		if err != nil {
			return nil, err
		}

		conv.Messages = append(conv.Messages, Message{
			ChatID:       row.ChatID,
			Text:         row.Text,
			Timestamp:    timestamp,
			SentAt:       FormatDateTime(timestamp),
			IsFromMe:     row.IsFromMe,
			Sender:       row.Sender,
			DisplayLabel: label,
		})

		if row.IsFromMe {
			conv.OutgoingCount++
		} else {
			conv.IncomingCount++
		}
		if timestamp.After(conv.LastActivity) {
			conv.LastActivity = timestamp
		}
	}

	for _, conv := range ordered {
		// Group chats are labelled by their first participant only; multi-party
		// naming is not attempted.
		if len(conv.Participants) > 0 {
			label, err := cache.DisplayLabel(conv.Participants[0])
			if err != nil {
				return nil, err
			}
			conv.Label = label
		}
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].LastActivity.After(ordered[j].LastActivity)
	})

	conversations := make([]Conversation, 0, len(ordered))
	for _, conv := range ordered {
		conversations = append(conversations, *conv)
	}
	return conversations, nil
}

// GetConversations is the full message-view pipeline: fetch the joined rows,
// then thread them with labels resolved through cache.
func GetConversations(messageDB *sql.DB, cache *ContactCache, search string) ([]Conversation, error) {
	rows, err := getMessageRows(messageDB, search)
	if err != nil {
		return nil, err
	}
	return groupConversations(rows, cache)
}

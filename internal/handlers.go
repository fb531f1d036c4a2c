package internal

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// storePaths is configured once at startup; the handlers open fresh read-only
// connections from it on every request.
var storePaths StorePaths

// ConfigureStores sets the store locations the view handlers read from.
func ConfigureStores(paths StorePaths) {
	storePaths = paths
}

// HandleCalls serves the call history view: filterable, sortable, paginated
// call records with resolved contact labels, plus all-time statistics when a
// phone number filter is active.
func HandleCalls(c echo.Context) error {
	filter := CallFilter{
		PhoneNumber: c.QueryParam("phone_number"),
		Date:        c.QueryParam("date"),
	}

	// A call_type that isn't even numeric still participates in filtering; it
	// just matches nothing, same as a numeric type with no records.
	if callTypeStr := c.QueryParam("call_type"); callTypeStr != "" {
		if val, err := strconv.Atoi(callTypeStr); err == nil {
			filter.CallType = val
		} else {
			filter.CallType = -1
		}
	}

	page := 1
	if pageStr := c.QueryParam("page"); pageStr != "" {
		if val, err := strconv.Atoi(pageStr); err == nil {
			page = val
		}
	}

	sortBy := c.QueryParam("sort_by")
	order := c.QueryParam("order")
	if sortBy == "" && order == "" {
		// Fall back to the user's saved sort preference.
		if userID, ok := c.Get("user_id").(string); ok {
			settings, err := GetUserSettings(userID)
			if err != nil {
				slog.Error("Error getting user settings", "error", err)
				settings = GetDefaultSettings()
			}
			sortBy = settings.Calls.SortBy
			order = settings.Calls.Order
		}
	}

	callDB, err := storePaths.OpenCallStore()
	if err != nil {
		slog.Error("Error opening call store", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Call history store unavailable",
		})
	}
	defer closeStore(callDB, "calls")

	addressBook, err := storePaths.OpenAddressBookStore()
	if err != nil {
		slog.Error("Error opening address book store", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Address book store unavailable",
		})
	}
	defer closeStore(addressBook, "address_book")

	// Contact labels are memoized per request, never across requests.
	cache := NewContactCache(addressBook)

	records, pagination, err := GetCallRecords(callDB, cache, filter, sortBy, order, page)
	if err != nil {
		slog.Error("Error getting call records", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to get call records",
		})
	}

	response := CallsResponse{
		Records:    records,
		Pagination: pagination,
	}

	if filter.PhoneNumber != "" {
		stats, err := ComputeCallStats(callDB, filter.PhoneNumber)
		if err != nil {
			slog.Error("Error computing call statistics", "error", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error": "Failed to compute call statistics",
			})
		}
		label, err := cache.DisplayLabel(filter.PhoneNumber)
		if err != nil {
			slog.Error("Error resolving contact label", "error", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error": "Failed to resolve contact",
			})
		}
		response.Stats = &stats
		response.StatsLabel = label
	}

	return c.JSON(http.StatusOK, response)
}

// HandleMessages serves the message view: conversations threaded by chat,
// newest-active first, with per-message labels and per-thread counts. An
// optional search term filters messages by substring.
func HandleMessages(c echo.Context) error {
	search := c.QueryParam("search")

	messageDB, err := storePaths.OpenMessageStore()
	if err != nil {
		slog.Error("Error opening message store", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Message store unavailable",
		})
	}
	defer closeStore(messageDB, "messages")

	addressBook, err := storePaths.OpenAddressBookStore()
	if err != nil {
		slog.Error("Error opening address book store", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Address book store unavailable",
		})
	}
	defer closeStore(addressBook, "address_book")

	cache := NewContactCache(addressBook)

	conversations, err := GetConversations(messageDB, cache, search)
	if err != nil {
		slog.Error("Error getting conversations", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to get conversations",
		})
	}

	return c.JSON(http.StatusOK, MessagesResponse{
		Conversations: conversations,
		Search:        search,
	})
}

// HandleVersion returns the application version
func HandleVersion(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"version": "dev",
	})
}

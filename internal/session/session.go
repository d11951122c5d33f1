package session

import (
	"fmt"
	"time"

	"github.com/pavelc4/aether-media-bot/internal/provider"
)

type State string

const (
	Idle                     State = "idle"
	AwaitingURL              State = "awaiting_url"
	AwaitingAction           State = "awaiting_action"
	AwaitingVideoQuality     State = "awaiting_video_quality"
	AwaitingVkStoryQuality   State = "awaiting_vk_story_quality"
	AwaitingSearchQuery      State = "awaiting_search_query"
	AwaitingSearchSelection  State = "awaiting_search_selection"
	AwaitingMusicQuery       State = "awaiting_music_query"
	AwaitingMusicSelection   State = "awaiting_music_selection"
	CollectingURLs           State = "collecting_urls"
	AwaitingDeveloperMessage State = "awaiting_developer_message"
)

type Format struct {
	ID         string `json:"format_id"`
	Resolution string `json:"resolution"`
	Ext        string `json:"ext"`
}

// Label is the text shown on the quality button and expected back from the user.
func (f Format) Label() string {
	return fmt.Sprintf("%s - %s", f.Resolution, f.Ext)
}

type Result struct {
	Title    string `json:"title"`
	Artist   string `json:"artist,omitempty"`
	URL      string `json:"url"`
	Duration int    `json:"duration"`
	Views    int64  `json:"views,omitempty"`
}

// Session is the volatile conversation state of a single user. Use the
// Await*/Reset helpers to move between states; they keep at most one kind
// of pending choice populated.
type Session struct {
	UserID    int64             `json:"user_id"`
	State     State             `json:"state"`
	URL       string            `json:"url,omitempty"`
	Category  provider.Category `json:"category,omitempty"`
	Formats   []Format          `json:"formats,omitempty"`
	Qualities map[string]string `json:"qualities,omitempty"`
	Results   []Result          `json:"results,omitempty"`
	Page      int               `json:"page,omitempty"`
	Queue     []string          `json:"queue,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func New(userID int64) *Session {
	return &Session{UserID: userID, State: Idle, UpdatedAt: time.Now()}
}

func (s *Session) clearChoices() {
	s.Formats = nil
	s.Qualities = nil
	s.Results = nil
	s.Page = 0
}

func (s *Session) Reset() {
	*s = Session{UserID: s.UserID, State: Idle, UpdatedAt: s.UpdatedAt}
}

func (s *Session) AwaitURL() {
	s.clearChoices()
	s.URL = ""
	s.Category = provider.Unrecognized
	s.Queue = nil
	s.State = AwaitingURL
}

func (s *Session) AwaitAction(url string, category provider.Category) {
	s.clearChoices()
	s.URL = url
	s.Category = category
	s.State = AwaitingAction
}

// BackToAction drops a pending quality menu and returns to the action menu
// for the URL already stored.
func (s *Session) BackToAction() {
	s.clearChoices()
	s.State = AwaitingAction
}

func (s *Session) AwaitVideoQuality(formats []Format) {
	s.clearChoices()
	s.Formats = append([]Format(nil), formats...)
	s.State = AwaitingVideoQuality
}

func (s *Session) AwaitStoryQuality(qualities map[string]string) {
	s.clearChoices()
	s.Qualities = make(map[string]string, len(qualities))
	for k, v := range qualities {
		s.Qualities[k] = v
	}
	s.State = AwaitingVkStoryQuality
}

func (s *Session) AwaitSearchQuery() {
	s.clearChoices()
	s.State = AwaitingSearchQuery
}

func (s *Session) AwaitSearchSelection(results []Result) {
	s.clearChoices()
	s.Results = append([]Result(nil), results...)
	s.State = AwaitingSearchSelection
}

func (s *Session) AwaitMusicQuery() {
	s.clearChoices()
	s.State = AwaitingMusicQuery
}

func (s *Session) AwaitMusicSelection(results []Result) {
	s.clearChoices()
	s.Results = append([]Result(nil), results...)
	s.State = AwaitingMusicSelection
}

func (s *Session) SetPage(page int) {
	s.Page = page
}

func (s *Session) AwaitDeveloperMessage() {
	s.clearChoices()
	s.State = AwaitingDeveloperMessage
}

func (s *Session) CollectURLs() {
	s.clearChoices()
	s.Queue = nil
	s.State = CollectingURLs
}

// Enqueue replaces the queue with urls. The session stays in CollectingURLs
// until the queue has been drained.
func (s *Session) Enqueue(urls []string) {
	s.clearChoices()
	s.Queue = append([]string(nil), urls...)
	s.State = CollectingURLs
}

// PopQueue removes and returns the front of the queue.
func (s *Session) PopQueue() (string, bool) {
	if len(s.Queue) == 0 {
		return "", false
	}
	head := s.Queue[0]
	s.Queue = s.Queue[1:]
	if len(s.Queue) == 0 {
		s.Queue = nil
	}
	return head, true
}

// Validate reports a session whose pending choices disagree with its state.
func (s *Session) Validate() error {
	populated := 0
	if len(s.Formats) > 0 {
		populated++
	}
	if len(s.Qualities) > 0 {
		populated++
	}
	if len(s.Results) > 0 {
		populated++
	}
	if populated > 1 {
		return fmt.Errorf("session %d: %d pending choice lists populated", s.UserID, populated)
	}

	switch s.State {
	case AwaitingAction:
		if s.URL == "" {
			return fmt.Errorf("session %d: %s without url", s.UserID, s.State)
		}
	case AwaitingVideoQuality:
		if len(s.Formats) == 0 || s.URL == "" {
			return fmt.Errorf("session %d: %s without formats", s.UserID, s.State)
		}
	case AwaitingVkStoryQuality:
		if len(s.Qualities) == 0 {
			return fmt.Errorf("session %d: %s without qualities", s.UserID, s.State)
		}
	case AwaitingSearchSelection, AwaitingMusicSelection:
		if len(s.Results) == 0 {
			return fmt.Errorf("session %d: %s without results", s.UserID, s.State)
		}
	}
	return nil
}

func (s *Session) Clone() *Session {
	c := *s
	c.Formats = append([]Format(nil), s.Formats...)
	c.Results = append([]Result(nil), s.Results...)
	c.Queue = append([]string(nil), s.Queue...)
	if s.Qualities != nil {
		c.Qualities = make(map[string]string, len(s.Qualities))
		for k, v := range s.Qualities {
			c.Qualities[k] = v
		}
	}
	if len(c.Formats) == 0 {
		c.Formats = nil
	}
	if len(c.Results) == 0 {
		c.Results = nil
	}
	if len(c.Queue) == 0 {
		c.Queue = nil
	}
	return &c
}

package locator

import (
	"encoding/json"
	"strings"

	"panel-brief/pkg/domain"
	"panel-brief/pkg/sites"
)

// looseString accepts a JSON string or number and ignores any other type,
// so one oddly typed field does not sink a whole episode list.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = looseString(strings.TrimSpace(str))
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err == nil {
		*s = looseString(num.String())
	}
	return nil
}

// rawEpisode is the union of episode field names seen across the API and
// the embedded page state.
type rawEpisode struct {
	ID        looseString `json:"id"`
	EID       looseString `json:"eid"`
	EpisodeID looseString `json:"episode_id"`

	Title        looseString `json:"title"`
	EpisodeTitle looseString `json:"episode_title"`

	Audio         looseString     `json:"audio"`
	AudioURL      looseString     `json:"audioUrl"`
	AudioURLSnake looseString     `json:"audio_url"`
	Enclosure     json.RawMessage `json:"enclosure"`
}

func (r rawEpisode) id() string {
	return firstNonEmpty(r.EID, r.ID, r.EpisodeID)
}

func (r rawEpisode) title() string {
	return firstNonEmpty(r.Title, r.EpisodeTitle)
}

func (r rawEpisode) audio() string {
	if a := firstNonEmpty(r.Audio, r.AudioURL, r.AudioURLSnake); a != "" {
		return a
	}
	var enc struct {
		URL looseString `json:"url"`
	}
	if len(r.Enclosure) > 0 && json.Unmarshal(r.Enclosure, &enc) == nil {
		return string(enc.URL)
	}
	return ""
}

type episodeList []rawEpisode

// episodes maps the list to descriptors, capped at limit. Records without
// an id are dropped; with requireTitle, so are records without a title.
func (l episodeList) episodes(requireTitle bool, limit int) []domain.Episode {
	var out []domain.Episode
	for _, r := range l {
		if len(out) >= limit {
			break
		}
		id := r.id()
		if id == "" {
			continue
		}
		title := r.title()
		if title == "" {
			if requireTitle {
				continue
			}
			title = sites.ProvisionalTitle(id)
		}
		out = append(out, domain.Episode{ID: id, Title: title, AudioURL: r.audio()})
	}
	return out
}

// listShapes are the envelopes an episode list is known to arrive in.
// Each is a strict decode; the first one that yields a non-empty list wins.
var listShapes = []func([]byte) (episodeList, error){
	func(b []byte) (episodeList, error) {
		var l episodeList
		err := json.Unmarshal(b, &l)
		return l, err
	},
	func(b []byte) (episodeList, error) {
		var v struct {
			Episodes episodeList `json:"episodes"`
		}
		err := json.Unmarshal(b, &v)
		return v.Episodes, err
	},
	func(b []byte) (episodeList, error) {
		var v struct {
			Data episodeList `json:"data"`
		}
		err := json.Unmarshal(b, &v)
		return v.Data, err
	},
	func(b []byte) (episodeList, error) {
		var v struct {
			Data struct {
				Episodes episodeList `json:"episodes"`
			} `json:"data"`
		}
		err := json.Unmarshal(b, &v)
		return v.Data.Episodes, err
	},
	func(b []byte) (episodeList, error) {
		var v struct {
			Podcast struct {
				Episodes episodeList `json:"episodes"`
			} `json:"podcast"`
		}
		err := json.Unmarshal(b, &v)
		return v.Podcast.Episodes, err
	},
	func(b []byte) (episodeList, error) {
		var v struct {
			Props struct {
				PageProps struct {
					Episodes episodeList `json:"episodes"`
					Podcast  struct {
						Episodes episodeList `json:"episodes"`
					} `json:"podcast"`
				} `json:"pageProps"`
			} `json:"props"`
		}
		err := json.Unmarshal(b, &v)
		if len(v.Props.PageProps.Episodes) > 0 {
			return v.Props.PageProps.Episodes, err
		}
		return v.Props.PageProps.Podcast.Episodes, err
	},
}

func decodeEpisodeList(b []byte) (episodeList, bool) {
	for _, shape := range listShapes {
		list, err := shape(b)
		if err != nil || len(list) == 0 {
			continue
		}
		return list, true
	}
	return nil, false
}

func firstNonEmpty(values ...looseString) string {
	for _, v := range values {
		if v != "" {
			return string(v)
		}
	}
	return ""
}

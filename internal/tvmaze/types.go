package tvmaze

import (
	"github.com/goccy/go-json"
)

type Rating struct {
	Average *float64 `json:"average"`
}

type Image struct {
	Medium   string `json:"medium,omitempty"`
	Original string `json:"original,omitempty"`
}

// Show is a tvmaze show. Fields the server does not look at are kept in
// Extra and written back unchanged. A decoded show also re-emits its modeled
// fields exactly as upstream sent them, absent and null values included.
type Show struct {
	ID     int64
	Name   string
	Genres []string
	Rating Rating
	Image  *Image
	Extra  map[string]json.RawMessage

	upstream map[string]json.RawMessage
}

var showKeys = []string{"id", "name", "genres", "rating", "image"}

func (s *Show) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var known struct {
		ID     int64    `json:"id"`
		Name   string   `json:"name"`
		Genres []string `json:"genres"`
		Rating *Rating  `json:"rating"`
		Image  *Image   `json:"image"`
	}
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	*s = Show{
		ID:       known.ID,
		Name:     known.Name,
		Genres:   known.Genres,
		Image:    known.Image,
		upstream: pick(raw, showKeys),
		Extra:    without(raw, showKeys),
	}
	if known.Rating != nil {
		s.Rating = *known.Rating
	}
	return nil
}

func (s Show) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.fields())
}

func (s Show) fields() map[string]any {
	out := make(map[string]any, len(s.Extra)+len(showKeys))
	for k, v := range s.Extra {
		out[k] = v
	}
	if s.upstream != nil {
		for k, v := range s.upstream {
			out[k] = v
		}
		return out
	}
	genres := s.Genres
	if genres == nil {
		genres = []string{}
	}
	out["id"] = s.ID
	out["name"] = s.Name
	out["genres"] = genres
	out["rating"] = s.Rating
	out["image"] = s.Image
	return out
}

// Summary is the reduced form embedded in actor responses.
func (s Show) Summary() ShowSummary {
	return ShowSummary{ID: s.ID, Name: s.Name, Rating: s.Rating, Image: s.Image}
}

type ShowSummary struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Rating Rating `json:"rating"`
	Image  *Image `json:"image"`
}

// ShowDetail is a show merged with its episode list and a view count.
type ShowDetail struct {
	Show
	Views  int
	Series []json.RawMessage
}

func (d ShowDetail) MarshalJSON() ([]byte, error) {
	out := d.Show.fields()
	series := d.Series
	if series == nil {
		series = []json.RawMessage{}
	}
	out["views"] = d.Views
	out["series"] = series
	return json.Marshal(out)
}

// Person is a tvmaze person; unknown fields pass through like Show.
type Person struct {
	ID    int64
	Name  string
	Image *Image
	Extra map[string]json.RawMessage
}

var personKeys = []string{"id", "name", "image"}

func (p *Person) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var known struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Image *Image `json:"image"`
	}
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	*p = Person{
		ID:    known.ID,
		Name:  known.Name,
		Image: known.Image,
		Extra: without(raw, personKeys),
	}
	return nil
}

func (p Person) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.fields())
}

func (p Person) fields() map[string]any {
	out := make(map[string]any, len(p.Extra)+len(personKeys))
	for k, v := range p.Extra {
		out[k] = v
	}
	out["id"] = p.ID
	out["name"] = p.Name
	out["image"] = p.Image
	return out
}

// ActorDetail is a person merged with the shows resolved from their credits.
type ActorDetail struct {
	Person
	Casts []ShowSummary
}

func (a ActorDetail) MarshalJSON() ([]byte, error) {
	out := a.Person.fields()
	casts := a.Casts
	if casts == nil {
		casts = []ShowSummary{}
	}
	out["casts"] = casts
	return json.Marshal(out)
}

type Link struct {
	Href string `json:"href"`
}

type CastCredit struct {
	Self  bool `json:"self"`
	Voice bool `json:"voice"`
	Links struct {
		Show      Link `json:"show"`
		Character Link `json:"character"`
	} `json:"_links"`
}

type searchHit struct {
	Score float64 `json:"score"`
	Show  Show    `json:"show"`
}

// pick copies the entries of raw named by keys; it returns a non-nil map.
func pick(raw map[string]json.RawMessage, keys []string) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(keys))
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			out[k] = v
		}
	}
	return out
}

func without(raw map[string]json.RawMessage, keys []string) map[string]json.RawMessage {
	for _, k := range keys {
		delete(raw, k)
	}
	if len(raw) == 0 {
		return nil
	}
	return raw
}

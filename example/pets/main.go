package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/tailbits/jsonapi"
	"github.com/tailbits/jsonapi/model"
	"github.com/tailbits/jsonapi/openapi"
)

var _ model.WithSchema = (*Pet)(nil)

// Pet Model
type Pet struct {
	jsonapi.Linked
	ID     int
	Name   string
	Age    int
	Collar *Collar `jsonapi:"attr,collar,omitempty"`
}

type Collar struct {
	Color string `json:"color"`
}

func (*Pet) Schema() []byte {
	return []byte(`{
		"type": "object",
		"properties": {
			"name": {
				"type": "string",
				"minLength": 1
			},
			"age": {
				"type": "integer",
				"minimum": 0
			},
			"collar": {
				"$ref": "#/definitions/Collar"
			}
		},
		"required": ["name"],
		"definitions": {
			"Collar": {
				"type": "object",
				"properties": {
					"color": {"type": "string"}
				}
			}
		}
	}`)
}

// =============================================================================
// Server

// store is an in-memory JSON:API server for pets.
type store struct {
	mu     sync.Mutex
	nextID int
	pets   map[string]*jsonapi.ResourceObject
	fed    map[string]int
}

func newStore() *store {
	return &store{nextID: 1, pets: map[string]*jsonapi.ResourceObject{}, fed: map[string]int{}}
}

func (s *store) routes(spec []byte) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /pets/{$}", s.list)
	mux.HandleFunc("POST /pets/{$}", s.create)
	mux.HandleFunc("GET /pets/{id}/{$}", s.fetch)
	mux.HandleFunc("PATCH /pets/{id}/{$}", s.update)
	mux.HandleFunc("DELETE /pets/{id}/{$}", s.remove)
	mux.HandleFunc("POST /pets/{id}/feed/{$}", s.feed)

	// standard handlers sit next to the resource endpoints
	mux.HandleFunc("GET /openapi.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(spec)
	})

	return mux
}

func (s *store) list(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	many := make([]*jsonapi.ResourceObject, 0, len(s.pets))
	for id := 1; id < s.nextID; id++ {
		if ro, ok := s.pets[strconv.Itoa(id)]; ok {
			many = append(many, ro)
		}
	}

	write(w, http.StatusOK, &jsonapi.Document{
		Data:  jsonapi.PrimaryData{IsMany: true, Many: many},
		Links: jsonapi.Links{jsonapi.LinkSelf: self(r)},
	})
}

func (s *store) create(w http.ResponseWriter, r *http.Request) {
	doc, ok := read(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ro := doc.Data.One
	ro.ID = strconv.Itoa(s.nextID)
	ro.Links = jsonapi.Links{jsonapi.LinkSelf: "http://" + r.Host + "/pets/" + ro.ID + "/"}
	s.nextID++
	s.pets[ro.ID] = ro

	write(w, http.StatusCreated, &jsonapi.Document{Data: jsonapi.PrimaryData{One: ro}})
}

func (s *store) fetch(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ro, ok := s.pets[r.PathValue("id")]
	if !ok {
		http.Error(w, `{"errors": [{"status": "404", "title": "pet not found"}]}`, http.StatusNotFound)
		return
	}

	write(w, http.StatusOK, &jsonapi.Document{Data: jsonapi.PrimaryData{One: ro}})
}

func (s *store) update(w http.ResponseWriter, r *http.Request) {
	doc, ok := read(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ro, ok := s.pets[r.PathValue("id")]
	if !ok {
		http.Error(w, `{"errors": [{"status": "404", "title": "pet not found"}]}`, http.StatusNotFound)
		return
	}
	for k, v := range doc.Data.One.Attributes {
		ro.Attributes[k] = v
	}

	write(w, http.StatusOK, &jsonapi.Document{Data: jsonapi.PrimaryData{One: ro}})
}

func (s *store) remove(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.pets, r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *store) feed(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := r.PathValue("id")
	s.fed[id]++

	w.Header().Set("Content-Type", jsonapi.MediaType)
	_ = json.NewEncoder(w).Encode(map[string]any{"meta": map[string]any{"meals": s.fed[id]}})
}

func read(w http.ResponseWriter, r *http.Request) (*jsonapi.Document, bool) {
	var doc jsonapi.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil || doc.Data.One == nil {
		http.Error(w, `{"errors": [{"status": "400", "title": "invalid document"}]}`, http.StatusBadRequest)
		return nil, false
	}
	if doc.Data.One.Attributes == nil {
		doc.Data.One.Attributes = map[string]any{}
	}
	return &doc, true
}

func write(w http.ResponseWriter, status int, doc *jsonapi.Document) {
	w.Header().Set("Content-Type", jsonapi.MediaType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(doc)
}

func self(r *http.Request) string {
	return "http://" + r.Host + r.URL.String()
}

// =============================================================================
// Client walkthrough

func run(ctx context.Context, c *jsonapi.Client, logger *slog.Logger) error {
	created, err := c.Create(ctx, jsonapi.Params{Resource: &Pet{Name: "Rex", Age: 3, Collar: &Collar{Color: "red"}}})
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	rex := created.(*Pet)
	logger.Info("created", "id", rex.ID, "name", rex.Name, "collar", rex.Collar.Color)

	if _, err := c.Create(ctx, jsonapi.Params{Resource: &Pet{Name: ""}}); model.IsValidationError(err) {
		logger.Info("rejected before sending", "err", err)
	}

	rex.Age = 4
	if _, err := c.Update(ctx, jsonapi.Params{Resource: rex, Attributes: []string{"age"}}); err != nil {
		return fmt.Errorf("update: %w", err)
	}

	again, err := jsonapi.Get[*Pet](ctx, c, jsonapi.Params{ID: strconv.Itoa(rex.ID)})
	if err != nil {
		return fmt.Errorf("get: %w", err)
	}
	logger.Info("fetched", "id", again.ID, "age", again.Age, "self", again.Self.URL)

	body, err := c.CustomAction(ctx, jsonapi.NewQuery().For(again).Action("feed").MustParams())
	if err != nil {
		return fmt.Errorf("feed: %w", err)
	}
	logger.Info("fed", "response", string(body))

	pets, col, err := jsonapi.List[*Pet](ctx, c, jsonapi.Params{})
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	logger.Info("listed", "count", len(pets), "next", col.Next != nil)

	if _, err := c.Delete(ctx, jsonapi.Params{Resource: again}); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	_, err = again.Refresh(ctx)
	var rerr *jsonapi.ResponseError
	if errors.As(err, &rerr) {
		logger.Info("gone", "status", rerr.StatusCode)
	}

	return nil
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		panic(err)
	}
	base := "http://" + ln.Addr().String()

	c := jsonapi.New(base, jsonapi.NewHTTPTransport(), jsonapi.WithValidation(true), jsonapi.WithLogger(logger))
	jsonapi.Define[Pet](c)

	if err := c.CheckSchema(c.Registry().Types()[0]); err != nil {
		panic(fmt.Errorf("pet schema out of sync: %w", err))
	}

	// Generate the OpenAPI schema
	spec, err := openapi.New(c, openapi.Info("Pets API", "1.0.0"))
	if err != nil {
		panic(fmt.Errorf("failed to generate OpenAPI schema: %w", err))
	}

	server := &http.Server{Handler: newStore().routes(spec)}
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic(err)
		}
	}()
	defer server.Close()

	fmt.Println("API URL      :", base)
	fmt.Println("OpenAPI spec :", base+"/openapi.json")

	if err := run(context.Background(), c, logger); err != nil {
		panic(err)
	}
}

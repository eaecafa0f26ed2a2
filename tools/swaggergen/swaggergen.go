// Command swaggergen generates OpenAPI 3.0 specification files (JSON and YAML)
// for the Recipe Favourites API and writes them to the api/ directory.
//
// Usage:
//
//	go run ./tools/swaggergen
//
// # For Contributors
//
// When you modify the API (add/change endpoints, request/response schemas, etc.),
// update this file to keep the swagger spec in sync:
//
//  1. Endpoints: Edit buildPaths() to add/modify path items and operations
//  2. Schemas: Edit buildSchemas() to add/modify request/response types
//  3. Regenerate: Run `go run ./tools/swaggergen` from the project root
//  4. Verify: Check api/swagger.yaml and api/swagger.json for correctness
//
// TestBuildPaths_MatchesRouter fails when a route is added to the router but not here.
//
// Helper functions:
//   - errContent(): Returns standard error response content (reuse for error responses)
//   - jsonContent(): Returns application/json content for a schema reference
//   - userIDParam(), recipeIDParam(): Path parameter definitions
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Lightweight OpenAPI 3.0 types
// ---------------------------------------------------------------------------

type OpenAPI struct {
	OpenAPI    string               `json:"openapi"              yaml:"openapi"`
	Info       Info                 `json:"info"                 yaml:"info"`
	Paths      map[string]*PathItem `json:"paths"                yaml:"paths"`
	Components Components           `json:"components"           yaml:"components"`
}

type Info struct {
	Title       string `json:"title"       yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Version     string `json:"version"     yaml:"version"`
}

type PathItem struct {
	Get    *Operation `json:"get,omitempty"    yaml:"get,omitempty"`
	Post   *Operation `json:"post,omitempty"   yaml:"post,omitempty"`
	Delete *Operation `json:"delete,omitempty" yaml:"delete,omitempty"`
}

type Operation struct {
	Tags        []string            `json:"tags"                  yaml:"tags"`
	Summary     string              `json:"summary"               yaml:"summary"`
	Description string              `json:"description,omitempty" yaml:"description,omitempty"`
	OperationID string              `json:"operationId"           yaml:"operationId"`
	Deprecated  bool                `json:"deprecated,omitempty"  yaml:"deprecated,omitempty"`
	Parameters  []Parameter         `json:"parameters,omitempty"  yaml:"parameters,omitempty"`
	RequestBody *RequestBody        `json:"requestBody,omitempty" yaml:"requestBody,omitempty"`
	Responses   map[string]Response `json:"responses"             yaml:"responses"`
}

type Parameter struct {
	Name        string `json:"name"        yaml:"name"`
	In          string `json:"in"          yaml:"in"`
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required"    yaml:"required"`
	Schema      Schema `json:"schema"      yaml:"schema"`
}

type RequestBody struct {
	Required    bool                 `json:"required"              yaml:"required"`
	Description string               `json:"description,omitempty" yaml:"description,omitempty"`
	Content     map[string]MediaType `json:"content"               yaml:"content"`
}

type MediaType struct {
	Schema Schema `json:"schema" yaml:"schema"`
}

type Response struct {
	Description string               `json:"description"       yaml:"description"`
	Content     map[string]MediaType `json:"content,omitempty" yaml:"content,omitempty"`
}

type Schema struct {
	Type        string            `json:"type,omitempty"        yaml:"type,omitempty"`
	Format      string            `json:"format,omitempty"      yaml:"format,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Nullable    bool              `json:"nullable,omitempty"    yaml:"nullable,omitempty"`
	Properties  map[string]Schema `json:"properties,omitempty"  yaml:"properties,omitempty"`
	Items       *Schema           `json:"items,omitempty"       yaml:"items,omitempty"`
	Required    []string          `json:"required,omitempty"    yaml:"required,omitempty"`
	Ref         string            `json:"$ref,omitempty"        yaml:"$ref,omitempty"`
	OneOf       []Schema          `json:"oneOf,omitempty"       yaml:"oneOf,omitempty"`
	Example     any               `json:"example,omitempty"     yaml:"example,omitempty"`
}

type Components struct {
	Schemas map[string]Schema `json:"schemas" yaml:"schemas"`
}

// ---------------------------------------------------------------------------
// Spec builder
// ---------------------------------------------------------------------------

func buildSpec() OpenAPI {
	return OpenAPI{
		OpenAPI: "3.0.3",
		Info: Info{
			Title:       "Recipe Favourites API",
			Description: "REST API for bookmarking recipes per user.",
			Version:     "1.0.0",
		},
		Paths: buildPaths(),
		Components: Components{
			Schemas: buildSchemas(),
		},
	}
}

func buildPaths() map[string]*PathItem {
	listFavourites := func(operationID string, deprecated bool) *Operation {
		return &Operation{
			Tags:        []string{"Favourites"},
			Summary:     "List user favourites",
			Description: "Returns every favourite of the user ordered by id. Unknown users get an empty array.",
			OperationID: operationID,
			Deprecated:  deprecated,
			Parameters:  []Parameter{userIDParam()},
			Responses: map[string]Response{
				"200": {
					Description: "A list of favourites, possibly empty",
					Content: map[string]MediaType{
						"application/json": {Schema: Schema{
							Type:  "array",
							Items: &Schema{Ref: "#/components/schemas/Favourite"},
						}},
					},
				},
				"500": {Description: "Internal server error", Content: errContent()},
			},
		}
	}

	return map[string]*PathItem{
		"/api/health": {
			Get: &Operation{
				Tags:        []string{"Health"},
				Summary:     "Liveness probe",
				Description: "Always succeeds while the process is serving requests. Also the keep-alive target.",
				OperationID: "health",
				Responses: map[string]Response{
					"200": {Description: "Service is up", Content: jsonContent("HealthResponse")},
				},
			},
		},
		"/api/favourites": {
			Post: &Operation{
				Tags:        []string{"Favourites"},
				Summary:     "Add a favourite",
				Description: "Stores a recipe as a favourite of the user and returns the stored row.",
				OperationID: "addFavourite",
				RequestBody: &RequestBody{
					Required:    true,
					Description: "Recipe to favourite",
					Content:     jsonContent("AddFavouriteRequest"),
				},
				Responses: map[string]Response{
					"201": {Description: "Favourite added", Content: jsonContent("Favourite")},
					"400": {Description: "Invalid request body, or missing required fields (a non-JSON body is ignored)", Content: errContent()},
					"409": {Description: "Favourite already exists (only when uniqueness is enabled)", Content: errContent()},
					"500": {Description: "Internal server error", Content: errContent()},
				},
			},
		},
		"/api/favourites/{userID}": {
			Get: listFavourites("getUserFavourites", false),
		},
		"/api/favorites/{userID}": {
			Get: listFavourites("getUserFavoritesAlias", true),
		},
		"/api/favourites/{userID}/{recipeID}": {
			Delete: &Operation{
				Tags:        []string{"Favourites"},
				Summary:     "Remove a favourite",
				Description: "Removes every favourite of the user for the recipe. Succeeds even when nothing matched.",
				OperationID: "removeFavourite",
				Parameters:  []Parameter{userIDParam(), recipeIDParam()},
				Responses: map[string]Response{
					"200": {Description: "Favourite removed", Content: jsonContent("SuccessMessage")},
					"500": {Description: "Internal server error", Content: errContent()},
				},
			},
		},
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func userIDParam() Parameter {
	return Parameter{
		Name:        "userID",
		In:          "path",
		Description: "Identifier of the user owning the favourites",
		Required:    true,
		Schema:      Schema{Type: "string"},
	}
}

func recipeIDParam() Parameter {
	return Parameter{
		Name:        "recipeID",
		In:          "path",
		Description: "Recipe identifier. Values that are not base-10 integers match nothing.",
		Required:    true,
		Schema:      Schema{Type: "string", Example: "42"},
	}
}

func jsonContent(schema string) map[string]MediaType {
	return map[string]MediaType{
		"application/json": {Schema: Schema{Ref: "#/components/schemas/" + schema}},
	}
}

func errContent() map[string]MediaType {
	return jsonContent("ErrorResponse")
}

func buildSchemas() map[string]Schema {
	flexibleInt := func(description string) Schema {
		return Schema{
			Description: description,
			OneOf: []Schema{
				{Type: "integer"},
				{Type: "string", Description: "Base-10 integer"},
			},
		}
	}

	return map[string]Schema{
		"ErrorResponse": {
			Type: "object",
			Properties: map[string]Schema{
				"error": {Type: "string", Description: "Human-readable error message"},
			},
			Required: []string{"error"},
		},
		"SuccessMessage": {
			Type: "object",
			Properties: map[string]Schema{
				"message": {Type: "string", Description: "Success message", Example: "Favorite removed successfully"},
			},
			Required: []string{"message"},
		},
		"HealthResponse": {
			Type: "object",
			Properties: map[string]Schema{
				"success": {Type: "boolean", Example: true},
			},
			Required: []string{"success"},
		},
		"AddFavouriteRequest": {
			Type:        "object",
			Description: "Payload for adding a favourite. userId must be a non-empty string or a non-zero number, and recipeId a non-zero number or any numeric string.",
			Properties: map[string]Schema{
				"userId":   {Type: "string", Example: "user_2abc"},
				"recipeId": flexibleInt("Recipe identifier"),
				"title":    {Type: "string", Nullable: true},
				"image":    {Type: "string", Nullable: true},
				"cookTime": {Type: "string", Nullable: true, Example: "25 minutes"},
				"servings": flexibleInt("Number of servings"),
			},
			Required: []string{"userId", "recipeId"},
		},
		"Favourite": {
			Type:        "object",
			Description: "A recipe bookmarked by a user.",
			Properties: map[string]Schema{
				"id":        {Type: "integer", Format: "int64"},
				"userId":    {Type: "string"},
				"recipeId":  {Type: "integer"},
				"title":     {Type: "string", Nullable: true},
				"image":     {Type: "string", Nullable: true},
				"cookTime":  {Type: "string", Nullable: true},
				"servings":  {Type: "integer", Nullable: true},
				"createdAt": {Type: "string", Format: "date-time"},
			},
			Required: []string{"id", "userId", "recipeId", "createdAt"},
		},
	}
}

// ---------------------------------------------------------------------------
// File writers
// ---------------------------------------------------------------------------

func writeJSON(spec OpenAPI, path string) error {
	data, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0644)
}

func writeYAML(spec OpenAPI, path string) error {
	data, err := yaml.Marshal(spec)
	if err != nil {
		return fmt.Errorf("marshal YAML: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func main() {
	_, src, _, _ := runtime.Caller(0)
	outDir := filepath.Join(filepath.Join(filepath.Dir(src), "..", ".."), "api")

	if err := os.MkdirAll(outDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create api/ directory: %v\n", err)
		os.Exit(1)
	}

	spec := buildSpec()

	jsonPath := filepath.Join(outDir, "swagger.json")
	if err := writeJSON(spec, jsonPath); err != nil {
		fmt.Fprintf(os.Stderr, "error writing JSON: %v\n", err)
		os.Exit(1)
	}

	yamlPath := filepath.Join(outDir, "swagger.yaml")
	if err := writeYAML(spec, yamlPath); err != nil {
		fmt.Fprintf(os.Stderr, "error writing YAML: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Swagger specs generated:\n  %s\n  %s\n", jsonPath, yamlPath)
}

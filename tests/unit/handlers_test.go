package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/docuforms/docuforms-api/internal/handlers"
	"github.com/docuforms/docuforms-api/internal/models"
	"github.com/docuforms/docuforms-api/internal/services"
	"github.com/docuforms/docuforms-api/internal/types"
	"github.com/docuforms/docuforms-api/tests/helpers"
	"github.com/gofiber/fiber/v2"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	// Auto-migrate models
	err = db.AutoMigrate(
		&models.TreeNode{},
		&models.Document{},
		&models.FormSubmission{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// identityMiddleware injects a fixed identity, standing in for the auth chain
func identityMiddleware(identity *services.Identity) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("identity", identity)
		return c.Next()
	}
}

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var custom *types.CustomError
			if errors.As(err, &custom) {
				return c.Status(custom.Code).JSON(fiber.Map{"message": custom.Message, "type": custom.Type})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		},
	})
}

// setupNodeApp wires the node routes over the given database
func setupNodeApp(db *gorm.DB) *fiber.App {
	app := newTestApp()
	handler := &handlers.NodeHandler{DB: db}
	app.Get("/api/nodes", handler.GetNodes)
	app.Get("/api/nodes/:id", handler.GetNode)
	app.Post("/api/nodes", handler.CreateNode)
	app.Put("/api/nodes/:id", handler.UpdateNode)
	app.Delete("/api/nodes/:id", handler.DeleteNode)
	return app
}

// setupDocumentApp wires the document routes over the given database
func setupDocumentApp(db *gorm.DB) *fiber.App {
	app := newTestApp()
	handler := &handlers.DocumentHandler{DB: db}
	app.Get("/api/documents", handler.GetDocuments)
	app.Get("/api/documents/:id", handler.GetDocument)
	app.Post("/api/documents", handler.CreateDocument)
	app.Put("/api/documents/:id", handler.UpdateDocument)
	app.Delete("/api/documents/:id", handler.DeleteDocument)
	return app
}

// TestCreateNode tests POST /api/nodes
func TestCreateNode(t *testing.T) {
	db := setupTestDB(t)
	app := setupNodeApp(db)

	body, _ := json.Marshal(map[string]interface{}{"name": "Root"})
	req := httptest.NewRequest("POST", "/api/nodes", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 201)

	var node models.TreeNode
	helpers.ParseJSON(t, resp, &node)
	if node.ID == 0 || node.Name != "Root" || node.ParentID != nil {
		t.Errorf("Unexpected node: %+v", node)
	}

	// Child under the new root
	body, _ = json.Marshal(map[string]interface{}{"name": "Child", "parent_id": node.ID})
	req = httptest.NewRequest("POST", "/api/nodes", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 201)

	var child models.TreeNode
	helpers.ParseJSON(t, resp, &child)
	if child.ParentID == nil || *child.ParentID != node.ID {
		t.Errorf("Expected child of %d, got %+v", node.ID, child)
	}
}

// TestCreateNodeMissingParent tests parent validation on create
func TestCreateNodeMissingParent(t *testing.T) {
	db := setupTestDB(t)
	app := setupNodeApp(db)

	body, _ := json.Marshal(map[string]interface{}{"name": "Orphan", "parent_id": 9999})
	req := httptest.NewRequest("POST", "/api/nodes", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 404)

	var count int64
	db.Model(&models.TreeNode{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected no nodes persisted, found %d", count)
	}
}

// TestCreateNodeInvalidBody tests malformed input
func TestCreateNodeInvalidBody(t *testing.T) {
	db := setupTestDB(t)
	app := setupNodeApp(db)

	req := httptest.NewRequest("POST", "/api/nodes", bytes.NewReader([]byte(`{not json`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 400)
}

// TestGetNodeForest tests GET /api/nodes shape
func TestGetNodeForest(t *testing.T) {
	db := setupTestDB(t)
	app := setupNodeApp(db)

	rootA := helpers.CreateTestNode(t, db, "Root A", nil)
	child := helpers.CreateTestNode(t, db, "Child", &rootA.ID)
	grandchild := helpers.CreateTestNode(t, db, "Grandchild", &child.ID)
	helpers.CreateTestNode(t, db, "Root B", nil)
	helpers.CreateTestDocument(t, db, grandchild.ID, "Deep Doc", "# content")

	req := httptest.NewRequest("GET", "/api/nodes", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	var forest []struct {
		ID       uint   `json:"id"`
		Name     string `json:"name"`
		Children []struct {
			Name     string `json:"name"`
			Children []struct {
				Name      string `json:"name"`
				Documents []struct {
					Title string `json:"title"`
				} `json:"documents"`
			} `json:"children"`
		} `json:"children"`
		Documents []interface{} `json:"documents"`
	}
	helpers.ParseJSON(t, resp, &forest)

	if len(forest) != 2 {
		t.Fatalf("Expected 2 roots, got %d", len(forest))
	}
	if forest[0].Name != "Root A" || forest[1].Name != "Root B" {
		t.Errorf("Roots out of storage order: %s, %s", forest[0].Name, forest[1].Name)
	}
	if forest[0].Documents == nil {
		t.Error("Expected documents to serialize as an empty array, not null")
	}
	if len(forest[0].Children) != 1 || forest[0].Children[0].Name != "Child" {
		t.Fatalf("Expected Child under Root A: %+v", forest[0].Children)
	}
	deep := forest[0].Children[0].Children
	if len(deep) != 1 || deep[0].Name != "Grandchild" {
		t.Fatalf("Expected Grandchild nesting: %+v", deep)
	}
	if len(deep[0].Documents) != 1 || deep[0].Documents[0].Title != "Deep Doc" {
		t.Errorf("Expected document attached to Grandchild: %+v", deep[0].Documents)
	}
}

// TestUpdateNodePartial tests PUT /api/nodes/:id partial semantics
func TestUpdateNodePartial(t *testing.T) {
	db := setupTestDB(t)
	app := setupNodeApp(db)

	root := helpers.CreateTestNode(t, db, "Root", nil)
	node := helpers.CreateTestNode(t, db, "Before", &root.ID)

	// Name only: parent untouched
	body, _ := json.Marshal(map[string]interface{}{"name": "After"})
	req := httptest.NewRequest("PUT", "/api/nodes/2", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	var updated models.TreeNode
	helpers.ParseJSON(t, resp, &updated)
	if updated.Name != "After" {
		t.Errorf("Expected renamed node, got %q", updated.Name)
	}
	if updated.ParentID == nil || *updated.ParentID != root.ID {
		t.Errorf("Name-only update changed parent: %+v", updated.ParentID)
	}

	// Explicit null parent re-roots
	req = httptest.NewRequest("PUT", "/api/nodes/2", bytes.NewReader([]byte(`{"parent_id": null}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	helpers.ParseJSON(t, resp, &updated)
	if updated.ParentID != nil {
		t.Errorf("Expected re-rooted node, got parent %v", *updated.ParentID)
	}
	if updated.Name != "After" {
		t.Errorf("Parent-only update changed name: %q", updated.Name)
	}

	// Missing parent on update is rejected
	body, _ = json.Marshal(map[string]interface{}{"parent_id": 9999})
	req = httptest.NewRequest("PUT", "/api/nodes/2", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 404)

	_ = node
}

// TestUpdateNodeOwnSubtreeRejected tests that a node cannot be re-parented
// under itself or one of its descendants
func TestUpdateNodeOwnSubtreeRejected(t *testing.T) {
	db := setupTestDB(t)
	app := setupNodeApp(db)

	root := helpers.CreateTestNode(t, db, "Root", nil)
	child := helpers.CreateTestNode(t, db, "Child", &root.ID)
	grandchild := helpers.CreateTestNode(t, db, "Grandchild", &child.ID)

	for _, parentID := range []uint{root.ID, grandchild.ID} {
		body, _ := json.Marshal(map[string]interface{}{"parent_id": parentID})
		req := httptest.NewRequest("PUT", "/api/nodes/1", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("Failed to execute request: %v", err)
		}
		helpers.AssertStatus(t, resp, 400)
	}

	// The root is untouched
	var after models.TreeNode
	if err := db.First(&after, root.ID).Error; err != nil {
		t.Fatalf("Failed to reload root: %v", err)
	}
	if after.ParentID != nil {
		t.Errorf("Rejected update changed parent to %v", *after.ParentID)
	}
}

// TestDeleteNodeParentCycle tests that deletion terminates on a corrupted
// parent cycle in storage and removes every node on it
func TestDeleteNodeParentCycle(t *testing.T) {
	db := setupTestDB(t)
	app := setupNodeApp(db)

	a := helpers.CreateTestNode(t, db, "A", nil)
	b := helpers.CreateTestNode(t, db, "B", &a.ID)

	// Corrupt storage directly: A and B point at each other.
	if err := db.Model(&models.TreeNode{}).Where("id = ?", a.ID).Update("parent_id", b.ID).Error; err != nil {
		t.Fatalf("Failed to corrupt parent reference: %v", err)
	}

	req := httptest.NewRequest("DELETE", "/api/nodes/1", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	var count int64
	db.Model(&models.TreeNode{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected both cycle nodes deleted, found %d", count)
	}
}

// TestUpdateNodeNotFound tests PUT against a missing node
func TestUpdateNodeNotFound(t *testing.T) {
	db := setupTestDB(t)
	app := setupNodeApp(db)

	body, _ := json.Marshal(map[string]interface{}{"name": "X"})
	req := httptest.NewRequest("PUT", "/api/nodes/42", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 404)
}

// TestDeleteNodeCascade tests DELETE /api/nodes/:id subtree cascade
func TestDeleteNodeCascade(t *testing.T) {
	db := setupTestDB(t)
	app := setupNodeApp(db)

	root := helpers.CreateTestNode(t, db, "Root", nil)
	child := helpers.CreateTestNode(t, db, "Child", &root.ID)
	grandchild := helpers.CreateTestNode(t, db, "Grandchild", &child.ID)
	sibling := helpers.CreateTestNode(t, db, "Sibling", nil)

	doc := helpers.CreateTestDocument(t, db, grandchild.ID, "Doc", "content")
	helpers.CreateTestSubmission(t, db, doc.ID, "user-1", []models.Answer{
		{ID: "q1", Label: "q1", Value: "yes", Result: models.ResultPass},
	})
	keepDoc := helpers.CreateTestDocument(t, db, sibling.ID, "Keep", "content")

	req := httptest.NewRequest("DELETE", "/api/nodes/1", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	var result map[string]interface{}
	helpers.ParseJSON(t, resp, &result)
	if result["ok"] != true {
		t.Error("Expected ok=true in delete response")
	}

	var nodeCount, docCount, subCount int64
	db.Model(&models.TreeNode{}).Count(&nodeCount)
	db.Model(&models.Document{}).Count(&docCount)
	db.Model(&models.FormSubmission{}).Count(&subCount)

	if nodeCount != 1 {
		t.Errorf("Expected only the sibling node to survive, got %d nodes", nodeCount)
	}
	if docCount != 1 {
		t.Errorf("Expected only the sibling document to survive, got %d documents", docCount)
	}
	if subCount != 0 {
		t.Errorf("Expected submissions to cascade, got %d", subCount)
	}

	var surviving models.Document
	if err := db.First(&surviving, keepDoc.ID).Error; err != nil {
		t.Errorf("Sibling document was deleted: %v", err)
	}
}

// TestDeleteNodeNotFound tests DELETE against a missing node
func TestDeleteNodeNotFound(t *testing.T) {
	db := setupTestDB(t)
	app := setupNodeApp(db)

	req := httptest.NewRequest("DELETE", "/api/nodes/42", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 404)
}

// TestCreateDocument tests POST /api/documents
func TestCreateDocument(t *testing.T) {
	db := setupTestDB(t)
	app := setupDocumentApp(db)

	node := helpers.CreateTestNode(t, db, "Root", nil)

	body, _ := json.Marshal(map[string]interface{}{
		"title":   "Guide",
		"content": "# Hello",
		"node_id": node.ID,
	})
	req := httptest.NewRequest("POST", "/api/documents", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 201)

	var doc models.Document
	helpers.ParseJSON(t, resp, &doc)
	if doc.Version != 1 {
		t.Errorf("Expected version 1 on create, got %d", doc.Version)
	}
	if doc.NodeID != node.ID || doc.Title != "Guide" {
		t.Errorf("Unexpected document: %+v", doc)
	}

	// Missing node
	body, _ = json.Marshal(map[string]interface{}{"title": "Nope", "node_id": 9999})
	req = httptest.NewRequest("POST", "/api/documents", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 404)
}

// TestDocumentVersionBump tests the content-keyed version rule
func TestDocumentVersionBump(t *testing.T) {
	db := setupTestDB(t)
	app := setupDocumentApp(db)

	node := helpers.CreateTestNode(t, db, "Root", nil)
	doc := helpers.CreateTestDocument(t, db, node.ID, "Guide", "v1 content")

	// Title-only update never bumps
	body, _ := json.Marshal(map[string]interface{}{"title": "Guide v2"})
	req := httptest.NewRequest("PUT", "/api/documents/1", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	var updated models.Document
	helpers.ParseJSON(t, resp, &updated)
	if updated.Version != 1 {
		t.Errorf("Title-only update bumped version to %d", updated.Version)
	}
	if updated.Title != "Guide v2" {
		t.Errorf("Expected renamed document, got %q", updated.Title)
	}

	// Content update bumps exactly once
	body, _ = json.Marshal(map[string]interface{}{"content": "v2 content", "title": "Guide v3"})
	req = httptest.NewRequest("PUT", "/api/documents/1", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	helpers.ParseJSON(t, resp, &updated)
	if updated.Version != 2 {
		t.Errorf("Expected version 2 after content update, got %d", updated.Version)
	}
	if updated.Content != "v2 content" || updated.Title != "Guide v3" {
		t.Errorf("Unexpected document after update: %+v", updated)
	}

	_ = doc
}

// TestListDocumentsFilter tests GET /api/documents?node_id=
func TestListDocumentsFilter(t *testing.T) {
	db := setupTestDB(t)
	app := setupDocumentApp(db)

	nodeA := helpers.CreateTestNode(t, db, "A", nil)
	nodeB := helpers.CreateTestNode(t, db, "B", nil)
	helpers.CreateTestDocument(t, db, nodeA.ID, "Doc A", "")
	helpers.CreateTestDocument(t, db, nodeB.ID, "Doc B1", "")
	helpers.CreateTestDocument(t, db, nodeB.ID, "Doc B2", "")

	req := httptest.NewRequest("GET", "/api/documents", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	var docs []models.Document
	helpers.ParseJSON(t, resp, &docs)
	if len(docs) != 3 {
		t.Errorf("Expected 3 documents unfiltered, got %d", len(docs))
	}

	req = httptest.NewRequest("GET", "/api/documents?node_id=2", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	helpers.ParseJSON(t, resp, &docs)
	if len(docs) != 2 {
		t.Errorf("Expected 2 documents for node 2, got %d", len(docs))
	}

	req = httptest.NewRequest("GET", "/api/documents?node_id=bogus", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 400)
}

// TestDeleteDocumentCascade tests DELETE /api/documents/:id
func TestDeleteDocumentCascade(t *testing.T) {
	db := setupTestDB(t)
	app := setupDocumentApp(db)

	node := helpers.CreateTestNode(t, db, "Root", nil)
	doc := helpers.CreateTestDocument(t, db, node.ID, "Doc", "")
	helpers.CreateTestSubmission(t, db, doc.ID, "user-1", []models.Answer{})
	helpers.CreateTestSubmission(t, db, doc.ID, "user-2", []models.Answer{})

	req := httptest.NewRequest("DELETE", "/api/documents/1", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	var docCount, subCount int64
	db.Model(&models.Document{}).Count(&docCount)
	db.Model(&models.FormSubmission{}).Count(&subCount)
	if docCount != 0 || subCount != 0 {
		t.Errorf("Expected cascade, got %d documents and %d submissions", docCount, subCount)
	}

	// The node itself survives
	var nodeCount int64
	db.Model(&models.TreeNode{}).Count(&nodeCount)
	if nodeCount != 1 {
		t.Errorf("Document delete should not touch nodes, got %d", nodeCount)
	}
}

package mcp

import (
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

type guideInput struct {
	Goal string `json:"goal" jsonschema:"One of: dcs_review, shelf_edit, reporting"`
}

type fixtureInput struct {
	FixtureID string `json:"fixture_id" jsonschema:"Gondola (fixture) id, e.g. G01"`
}

type editLogInput struct {
	FixtureID string `json:"fixture_id" jsonschema:"Gondola (fixture) id"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum number of entries, newest first. 0 returns all."`
}

type evaluateInput struct {
	Ruleset        string `json:"ruleset,omitempty" jsonschema:"DCS ruleset: threshold (percentile rules) or balanced (fixed reduction share). Defaults to the configured ruleset."`
	CandidatesFile string `json:"candidates_file,omitempty" jsonschema:"Optional path to a replacement-candidate CSV. Defaults to the configured feed."`
}

type pendingInput struct {
	Action   string  `json:"action,omitempty" jsonschema:"Optional action filter: cut, faceReduce or faceIncrease"`
	Category string  `json:"category,omitempty" jsonschema:"Optional exact category name filter"`
	MinPI    float64 `json:"min_pi,omitempty" jsonschema:"Optional minimum daily sales rate (PI)"`
}

type approveInput struct {
	JAN             string `json:"jan" jsonschema:"JAN code of the proposal's product"`
	FixtureID       string `json:"fixture_id,omitempty" jsonschema:"Fixture id. Required only when the JAN has proposals on several fixtures."`
	Actor           string `json:"actor,omitempty" jsonschema:"Who approves. Defaults to the configured actor."`
	ConfirmOverflow bool   `json:"confirm_overflow,omitempty" jsonschema:"Apply a facing increase even if the row would exceed the shelf width"`
}

type rejectInput struct {
	JAN       string `json:"jan" jsonschema:"JAN code of the proposal's product"`
	FixtureID string `json:"fixture_id,omitempty" jsonschema:"Fixture id. Required only when the JAN has proposals on several fixtures."`
	Actor     string `json:"actor,omitempty" jsonschema:"Who rejects. Defaults to the configured actor."`
	Reason    string `json:"reason,omitempty" jsonschema:"Why the proposal was rejected"`
}

type productInput struct {
	FixtureID string `json:"fixture_id" jsonschema:"Gondola (fixture) id"`
	JAN       string `json:"jan" jsonschema:"JAN code of the product"`
	Actor     string `json:"actor,omitempty" jsonschema:"Who makes the edit"`
}

type facingInput struct {
	FixtureID       string `json:"fixture_id" jsonschema:"Gondola (fixture) id"`
	JAN             string `json:"jan" jsonschema:"JAN code of the product"`
	Face            int    `json:"face" jsonschema:"New facing count (1-6). 0 or less removes the product from the shelf."`
	ConfirmOverflow bool   `json:"confirm_overflow,omitempty" jsonschema:"Apply even if the row would exceed the shelf width"`
	Actor           string `json:"actor,omitempty" jsonschema:"Who makes the edit"`
}

type moveInput struct {
	FixtureID string `json:"fixture_id" jsonschema:"Gondola (fixture) id"`
	JAN       string `json:"jan" jsonschema:"JAN code of the product"`
	Row       int    `json:"row" jsonschema:"Target shelf level (1-based)"`
	Index     int    `json:"index" jsonschema:"Target position within the row (0-based)"`
	Actor     string `json:"actor,omitempty" jsonschema:"Who makes the edit"`
}

type depthInput struct {
	FixtureID string `json:"fixture_id" jsonschema:"Gondola (fixture) id"`
	JAN       string `json:"jan" jsonschema:"JAN code of the product"`
	Depth     int    `json:"depth" jsonschema:"Units front-to-back (1-10)"`
	Actor     string `json:"actor,omitempty" jsonschema:"Who makes the edit"`
}

type rowHeightInput struct {
	FixtureID string `json:"fixture_id" jsonschema:"Gondola (fixture) id"`
	Row       int    `json:"row" jsonschema:"Shelf level (1-based)"`
	HeightMm  int    `json:"height_mm" jsonschema:"New clear height of the level in millimetres"`
	Actor     string `json:"actor,omitempty" jsonschema:"Who makes the edit"`
}

type stockInput struct {
	FixtureID string `json:"fixture_id" jsonschema:"Gondola (fixture) id"`
	JAN       string `json:"jan" jsonschema:"JAN code of the product"`
	Delta     int    `json:"delta" jsonschema:"Signed correction added to the displayed stock"`
	Actor     string `json:"actor,omitempty" jsonschema:"Who makes the edit"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.sdk, &sdk.Tool{
		Name:        "get_workflow_guide",
		Description: "Get the recommended sequence of tools for a goal (dcs_review, shelf_edit, reporting). Call this first if unsure where to start.",
	}, s.handleGetWorkflowGuide)

	// Catalog
	sdk.AddTool(s.sdk, &sdk.Tool{
		Name:        "list_fixtures",
		Description: "List every gondola with its category label, product count and overflowing rows.",
	}, s.handleListFixtures)
	sdk.AddTool(s.sdk, &sdk.Tool{
		Name:        "get_fixture",
		Description: "Get one gondola with its active and removed products, row heights and capacity mismatches.",
	}, s.handleGetFixture)
	sdk.AddTool(s.sdk, &sdk.Tool{
		Name:        "get_product",
		Description: "Get one product on a gondola with its expected capacity, effective stock and weekly sales.",
	}, s.handleGetProduct)
	sdk.AddTool(s.sdk, &sdk.Tool{
		Name:        "get_row_occupancy",
		Description: "Report occupied and free width per shelf level of a gondola. Rows wider than the shelf are flagged as overflow.",
	}, s.handleRowOccupancy)
	sdk.AddTool(s.sdk, &sdk.Tool{
		Name:        "get_edit_log",
		Description: "List the recorded shelf edits of a gondola, newest first.",
	}, s.handleEditLog)

	// DCS
	sdk.AddTool(s.sdk, &sdk.Tool{
		Name: "evaluate_dcs",
		Description: "Run the DCS recommendation engine over the whole catalog and store the proposals as the new review batch. " +
			"Guidance: this CLEARS all earlier approve/reject decisions. The ruleset must be chosen explicitly (threshold or balanced) unless one is configured. " +
			"Call 'list_pending_proposals' next.",
	}, s.handleEvaluate)
	sdk.AddTool(s.sdk, &sdk.Tool{
		Name:        "list_pending_proposals",
		Description: "List proposals without a decision, ordered by fixture and JAN, plus a progress summary. Optional filters: action, category, min_pi.",
	}, s.handleListPending)
	sdk.AddTool(s.sdk, &sdk.Tool{
		Name: "approve_proposal",
		Description: "Approve a DCS proposal and apply it to the shelf: cuts remove the product, facing proposals set the target facing. " +
			"If a facing increase would overflow the row it is NOT applied or recorded unless confirm_overflow is true. " +
			"YOU MUST ask the user before repeating a call with confirm_overflow=true.",
	}, s.handleApprove)
	sdk.AddTool(s.sdk, &sdk.Tool{
		Name:        "reject_proposal",
		Description: "Reject a DCS proposal. The shelf is left unchanged.",
	}, s.handleReject)

	// Shelf edits
	sdk.AddTool(s.sdk, &sdk.Tool{
		Name: "change_facing",
		Description: "Set a product's facing count. A count of 0 removes it. An increase past the shelf width is only applied with confirm_overflow=true; " +
			"without it the response carries the overflow warning.",
	}, s.handleChangeFacing)
	sdk.AddTool(s.sdk, &sdk.Tool{
		Name:        "delete_product",
		Description: "Remove a product from the shelf. It stays restorable with 'restore_product'.",
	}, s.handleDeleteProduct)
	sdk.AddTool(s.sdk, &sdk.Tool{
		Name:        "restore_product",
		Description: "Put a removed product back on the shelf with its previous row, position and facing.",
	}, s.handleRestoreProduct)
	sdk.AddTool(s.sdk, &sdk.Tool{
		Name:        "move_product",
		Description: "Move a product to a row, before the product currently at index. An index past the end appends to the row.",
	}, s.handleMoveProduct)
	sdk.AddTool(s.sdk, &sdk.Tool{
		Name:        "change_depth",
		Description: "Set how many units a product stands front-to-back. Capacity is recomputed.",
	}, s.handleChangeDepth)
	sdk.AddTool(s.sdk, &sdk.Tool{
		Name:        "set_row_height",
		Description: "Change the clear height of a shelf level. Capacity of every product in it is recomputed.",
	}, s.handleSetRowHeight)
	sdk.AddTool(s.sdk, &sdk.Tool{
		Name:        "correct_stock",
		Description: "Add a manual correction to a product's displayed stock.",
	}, s.handleCorrectStock)
}

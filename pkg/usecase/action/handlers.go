package action

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/m-mizutani/goerr/v2"
	"github.com/rapid-crm/jasper/pkg/model"
	"github.com/rapid-crm/jasper/pkg/usecase/voice"
)

func stringParam(params map[string]any, key string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return ""
}

func floatParam(params map[string]any, key string) float64 {
	switch v := params[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func objectSchema(required []string, props map[string]*jsonschema.Schema) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}

func (x *Executor) builtinDefinitions() []*Definition {
	defs := []*Definition{
		{
			Name:        "add_contact",
			Description: "Create a CRM contact",
			Schema: objectSchema([]string{"first_name"}, map[string]*jsonschema.Schema{
				"first_name": {Type: "string"},
				"last_name":  {Type: "string"},
				"email":      {Type: "string"},
				"phone":      {Type: "string"},
			}),
			Handler: x.addContact,
		},
		{
			Name:        "update_contact",
			Description: "Update an existing CRM contact",
			Schema: objectSchema([]string{"contact_id"}, map[string]*jsonschema.Schema{
				"contact_id": {Type: "number"},
				"first_name": {Type: "string"},
				"last_name":  {Type: "string"},
				"email":      {Type: "string"},
				"phone":      {Type: "string"},
			}),
			Handler: x.updateContact,
		},
		{
			Name:        "add_company",
			Description: "Create a CRM company",
			Schema: objectSchema([]string{"name"}, map[string]*jsonschema.Schema{
				"name":         {Type: "string"},
				"usdot_number": {Type: "string"},
				"phone":        {Type: "string"},
				"state":        {Type: "string"},
			}),
			Handler: x.addCompany,
		},
		{
			Name:        "add_deal",
			Description: "Create a CRM deal",
			Schema: objectSchema([]string{"title"}, map[string]*jsonschema.Schema{
				"title": {Type: "string"},
				"value": {Type: "number"},
				"stage": {Type: "string"},
			}),
			Handler: x.addDeal,
		},
		{
			Name:        "backup_database",
			Description: "Copy the database file to the backup target",
			Schema:      objectSchema(nil, map[string]*jsonschema.Schema{}),
			Handler:     x.backupDatabase,
		},
		{
			Name:        "cleanup_logs",
			Description: "Delete audit log rows older than 30 days",
			Schema:      objectSchema(nil, map[string]*jsonschema.Schema{}),
			Handler:     x.cleanupLogs,
		},
		{
			Name:        "restart_server",
			Description: "Request a server restart",
			Schema:      objectSchema(nil, map[string]*jsonschema.Schema{}),
			Handler:     x.restartServer,
		},
	}

	if x.voices != nil {
		defs = append(defs, &Definition{
			Name:        "set_voice_preference",
			Description: "Change the user's assistant voice",
			Schema: objectSchema([]string{"voice_id"}, map[string]*jsonschema.Schema{
				"voice_id": {Type: "string"},
				"speed":    {Type: "number"},
			}),
			Handler: x.setVoicePreference,
		})
	}

	if x.agents != nil {
		defs = append(defs,
			&Definition{
				Name:        "create_agent",
				Description: "Deploy an agent from a registered template",
				Schema: objectSchema([]string{"agent_type"}, map[string]*jsonschema.Schema{
					"agent_type": {Type: "string"},
					"name":       {Type: "string"},
				}),
				Handler: x.createAgent,
			},
			&Definition{
				Name:        "execute_agent_task",
				Description: "Run a task on a deployed agent",
				Schema: objectSchema([]string{"agent_id", "task"}, map[string]*jsonschema.Schema{
					"agent_id": {Type: "string"},
					"task":     {Type: "string"},
				}),
				Handler: x.executeAgentTask,
			},
		)
	}

	return defs
}

func (x *Executor) addContact(ctx context.Context, req *Request) (map[string]any, error) {
	contact := &model.Contact{
		FirstName: stringParam(req.Params, "first_name"),
		LastName:  stringParam(req.Params, "last_name"),
		Email:     stringParam(req.Params, "email"),
		Phone:     stringParam(req.Params, "phone"),
	}
	if contact.LastName == "" {
		contact.LastName = "Unknown"
	}

	id, err := x.repo.InsertContact(ctx, contact)
	if err != nil {
		return nil, err
	}
	return map[string]any{"contact_id": id, "name": contact.FirstName + " " + contact.LastName}, nil
}

func (x *Executor) updateContact(ctx context.Context, req *Request) (map[string]any, error) {
	contact := &model.Contact{
		ID:        int64(floatParam(req.Params, "contact_id")),
		FirstName: stringParam(req.Params, "first_name"),
		LastName:  stringParam(req.Params, "last_name"),
		Email:     stringParam(req.Params, "email"),
		Phone:     stringParam(req.Params, "phone"),
	}
	if err := x.repo.UpdateContact(ctx, contact); err != nil {
		return nil, err
	}
	return map[string]any{"contact_id": contact.ID, "updated": true}, nil
}

func (x *Executor) addCompany(ctx context.Context, req *Request) (map[string]any, error) {
	company := &model.Company{
		Name:  stringParam(req.Params, "name"),
		USDOT: stringParam(req.Params, "usdot_number"),
		Phone: stringParam(req.Params, "phone"),
		State: stringParam(req.Params, "state"),
	}
	id, err := x.repo.InsertCompany(ctx, company)
	if err != nil {
		return nil, err
	}
	return map[string]any{"company_id": id, "name": company.Name}, nil
}

func (x *Executor) addDeal(ctx context.Context, req *Request) (map[string]any, error) {
	deal := &model.Deal{
		Title: stringParam(req.Params, "title"),
		Value: floatParam(req.Params, "value"),
		Stage: stringParam(req.Params, "stage"),
	}
	if deal.Stage == "" {
		deal.Stage = "prospecting"
	}
	id, err := x.repo.InsertDeal(ctx, deal)
	if err != nil {
		return nil, err
	}
	return map[string]any{"deal_id": id, "title": deal.Title, "stage": deal.Stage}, nil
}

func (x *Executor) setVoicePreference(ctx context.Context, req *Request) (map[string]any, error) {
	pref, err := x.voices.SetPreference(ctx, req.UserID, voice.SetPreferenceInput{
		VoiceID: stringParam(req.Params, "voice_id"),
		Speed:   floatParam(req.Params, "speed"),
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{"voice_id": pref.VoiceID, "provider": pref.Provider}, nil
}

func (x *Executor) backupDatabase(ctx context.Context, req *Request) (map[string]any, error) {
	if x.backup == nil {
		return nil, goerr.New("no backup target configured")
	}
	if x.dbPath == "" {
		return nil, goerr.New("database path is not configured")
	}

	src, err := os.Open(x.dbPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open database file", goerr.V("path", x.dbPath))
	}
	defer src.Close()

	key := fmt.Sprintf("backups/jasper_%s.db", time.Now().Format("20060102_150405"))
	dst, err := x.backup.Put(ctx, key)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open backup writer", goerr.V("key", key))
	}

	written, err := io.Copy(dst, src)
	if err != nil {
		dst.Close()
		return nil, goerr.Wrap(err, "failed to write backup", goerr.V("key", key))
	}
	if err := dst.Close(); err != nil {
		return nil, goerr.Wrap(err, "failed to finalize backup", goerr.V("key", key))
	}

	return map[string]any{"backup_key": key, "bytes": written}, nil
}

func (x *Executor) cleanupLogs(ctx context.Context, req *Request) (map[string]any, error) {
	cutoff := time.Now().AddDate(0, 0, -model.DefaultRetentionDays)
	deleted, err := x.repo.DeleteActionLogsBefore(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	return map[string]any{"deleted_logs": deleted}, nil
}

func (x *Executor) restartServer(ctx context.Context, req *Request) (map[string]any, error) {
	// Restarts are delegated to the process supervisor; the action only
	// records the request.
	return map[string]any{"restart": "requested", "requested_at": time.Now().Format(time.RFC3339)}, nil
}

func (x *Executor) createAgent(ctx context.Context, req *Request) (map[string]any, error) {
	agent, err := x.agents.Deploy(ctx, stringParam(req.Params, "agent_type"), stringParam(req.Params, "name"), nil)
	if err != nil {
		return nil, err
	}
	return map[string]any{"agent_id": string(agent.ID), "type": agent.Type, "status": string(agent.Status)}, nil
}

func (x *Executor) executeAgentTask(ctx context.Context, req *Request) (map[string]any, error) {
	exec, err := x.agents.ExecuteTask(ctx, model.AgentID(stringParam(req.Params, "agent_id")), stringParam(req.Params, "task"))
	if err != nil {
		return nil, err
	}
	return map[string]any{"execution_id": exec.ID, "result": exec.Result}, nil
}

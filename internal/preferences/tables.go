package preferences

type TableID string

const (
	TableProjects              TableID = "projects"
	TableCompanies             TableID = "companies"
	TablePeople                TableID = "people"
	TableProjectCollaborations TableID = "projectCollaborations"
	TableCompanyCollaborations TableID = "companyCollaborations"
)

type Column struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
	Sortable bool   `json:"sortable"`
	Default  bool   `json:"default"`
}

// TableConfig is the field configuration for one logical table. Exactly one
// column is required and it is always listed first.
type TableConfig struct {
	ID          TableID  `json:"id"`
	Columns     []Column `json:"columns"`
	DefaultSort string   `json:"defaultSort"`
}

var tableConfigs = map[TableID]TableConfig{
	TableProjects: {
		ID:          TableProjects,
		DefaultSort: "name",
		Columns: []Column{
			{ID: "name", Label: "Name", Required: true, Sortable: true, Default: true},
			{ID: "frGoal", Label: "Fundraising goal", Sortable: true, Default: true},
			{ID: "createdAt", Label: "Created", Sortable: true, Default: true},
			{ID: "updatedAt", Label: "Updated", Sortable: true},
		},
	},
	TableCompanies: {
		ID:          TableCompanies,
		DefaultSort: "name",
		Columns: []Column{
			{ID: "name", Label: "Name", Required: true, Sortable: true, Default: true},
			{ID: "url", Label: "Website", Sortable: true},
			{ID: "address", Label: "Address"},
			{ID: "city", Label: "City", Sortable: true, Default: true},
			{ID: "zip", Label: "ZIP", Sortable: true},
			{ID: "country", Label: "Country", Sortable: true, Default: true},
			{ID: "phone", Label: "Phone", Default: true},
			{ID: "budgetingMonth", Label: "Budgeting month", Sortable: true, Default: true},
			{ID: "comment", Label: "Comment"},
		},
	},
	TablePeople: {
		ID:          TablePeople,
		DefaultSort: "name",
		Columns: []Column{
			{ID: "name", Label: "Name", Required: true, Sortable: true, Default: true},
			{ID: "email", Label: "Email", Sortable: true, Default: true},
			{ID: "phone", Label: "Phone", Default: true},
			{ID: "company", Label: "Company", Sortable: true, Default: true},
			{ID: "function", Label: "Function", Sortable: true, Default: true},
			{ID: "createdAt", Label: "Created", Sortable: true},
		},
	},
	TableProjectCollaborations: {
		ID:          TableProjectCollaborations,
		DefaultSort: "status",
		Columns:     collaborationColumns("company", "Company"),
	},
	TableCompanyCollaborations: {
		ID:          TableCompanyCollaborations,
		DefaultSort: "status",
		Columns:     collaborationColumns("project", "Project"),
	},
}

// collaborationColumns builds the collaboration column set; the owning side
// of the view decides which relation is the required column.
func collaborationColumns(requiredID, requiredLabel string) []Column {
	return []Column{
		{ID: requiredID, Label: requiredLabel, Required: true, Sortable: true, Default: true},
		{ID: "person", Label: "Contact person", Default: true},
		{ID: "responsible", Label: "Responsible", Sortable: true, Default: true},
		{ID: "status", Label: "Status", Sortable: true, Default: true},
		{ID: "priority", Label: "Priority", Sortable: true, Default: true},
		{ID: "amount", Label: "Amount", Sortable: true, Default: true},
		{ID: "type", Label: "Type", Sortable: true},
		{ID: "contactInFuture", Label: "Contact in future"},
		{ID: "comment", Label: "Comment"},
		{ID: "updatedAt", Label: "Updated", Sortable: true},
	}
}

func Tables() []TableID {
	return []TableID{
		TableProjects,
		TableCompanies,
		TablePeople,
		TableProjectCollaborations,
		TableCompanyCollaborations,
	}
}

func Lookup(id TableID) (TableConfig, bool) {
	cfg, ok := tableConfigs[id]
	return cfg, ok
}

func (t TableConfig) RequiredColumn() string {
	for _, col := range t.Columns {
		if col.Required {
			return col.ID
		}
	}
	return ""
}

func (t TableConfig) column(id string) (Column, bool) {
	for _, col := range t.Columns {
		if col.ID == id {
			return col, true
		}
	}
	return Column{}, false
}

func (t TableConfig) Defaults() TablePreferences {
	visible := make([]string, 0, len(t.Columns))
	for _, col := range t.Columns {
		if col.Default || col.Required {
			visible = append(visible, col.ID)
		}
	}
	return TablePreferences{
		VisibleColumns: visible,
		SortField:      t.DefaultSort,
		SortDirection:  SortAsc,
	}
}

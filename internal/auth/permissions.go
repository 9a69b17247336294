package auth

// Modules are the top-level functional areas of the suite.
const (
	ModuleCommerce      = "commerce"
	ModuleCRM           = "crm"
	ModuleFinance       = "finance"
	ModuleProcurement   = "procurement"
	ModuleWorkforce     = "workforce"
	ModuleManufacturing = "manufacturing"
)

// Resources are the business objects permissions are granted on.
// A permission check names a resource and an action, e.g. ("invoices", "approve").
const (
	ResourceCustomers      = "customers"
	ResourceProducts       = "products"
	ResourceOrders         = "orders"
	ResourceLeads          = "leads"
	ResourceContacts       = "contacts"
	ResourceInvoices       = "invoices"
	ResourceLedger         = "ledger"
	ResourcePayments       = "payments"
	ResourceVendors        = "vendors"
	ResourcePurchaseOrders = "purchase_orders"
	ResourceEmployees      = "employees"
	ResourceAttendance     = "attendance"
	ResourceWorkOrders     = "work_orders"
	ResourceAssets         = "assets"
)

// Actions.
const (
	ActionView    = "view"
	ActionCreate  = "create"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
	ActionApprove = "approve"
)

// CatalogModule is one module of the seeded permission catalog.
type CatalogModule struct {
	Name        string
	DisplayName string
	Description string
	Resources   []CatalogResource
}

// CatalogResource is a resource and the actions that can be granted on it.
type CatalogResource struct {
	Name    string
	Actions []string
}

func crud(resource string, extra ...string) CatalogResource {
	actions := []string{ActionView, ActionCreate, ActionUpdate, ActionDelete}

	return CatalogResource{Name: resource, Actions: append(actions, extra...)}
}

// Catalog returns the modules, resources and actions seeded at startup.
func Catalog() []CatalogModule {
	return []CatalogModule{
		{
			Name: ModuleCommerce, DisplayName: "Commerce", Description: "Customers, products and sales orders",
			Resources: []CatalogResource{crud(ResourceCustomers), crud(ResourceProducts), crud(ResourceOrders)},
		},
		{
			Name: ModuleCRM, DisplayName: "CRM", Description: "Leads and contacts",
			Resources: []CatalogResource{crud(ResourceLeads), crud(ResourceContacts)},
		},
		{
			Name: ModuleFinance, DisplayName: "Finance", Description: "Invoicing, ledger and payments",
			Resources: []CatalogResource{
				crud(ResourceInvoices, ActionApprove), crud(ResourceLedger), crud(ResourcePayments),
			},
		},
		{
			Name: ModuleProcurement, DisplayName: "Procurement", Description: "Vendors and purchase orders",
			Resources: []CatalogResource{crud(ResourceVendors), crud(ResourcePurchaseOrders, ActionApprove)},
		},
		{
			Name: ModuleWorkforce, DisplayName: "Workforce", Description: "Employees and attendance",
			Resources: []CatalogResource{crud(ResourceEmployees), crud(ResourceAttendance)},
		},
		{
			Name: ModuleManufacturing, DisplayName: "Manufacturing", Description: "Work orders and assets",
			Resources: []CatalogResource{crud(ResourceWorkOrders), crud(ResourceAssets)},
		},
	}
}

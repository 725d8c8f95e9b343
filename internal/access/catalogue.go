package access

const (
	RolePlatformAdmin    = "PLATFORM_ADMIN"
	RolePharmacyManager  = "PHARMACY_MANAGER"
	RolePharmacyEmployee = "PHARMACY_EMPLOYEE"
	RolePharmacyTrainee  = "PHARMACY_TRAINEE"
)

const (
	PermUserCreate       = "USER_CREATE"
	PermUserRead         = "USER_READ"
	PermUserUpdate       = "USER_UPDATE"
	PermUserDelete       = "USER_DELETE"
	PermEmployeeCreate   = "EMPLOYEE_CREATE"
	PermEmployeeRead     = "EMPLOYEE_READ"
	PermEmployeeUpdate   = "EMPLOYEE_UPDATE"
	PermEmployeeDelete   = "EMPLOYEE_DELETE"
	PermPharmacyUpdate   = "PHARMACY_UPDATE"
	PermPharmacyRead     = "PHARMACY_READ"
	PermRoleCreate       = "ROLE_CREATE"
	PermRoleRead         = "ROLE_READ"
	PermRoleUpdate       = "ROLE_UPDATE"
	PermRoleDelete       = "ROLE_DELETE"
	PermPermissionCreate = "PERMISSION_CREATE"
	PermPermissionRead   = "PERMISSION_READ"
	PermAuditView        = "AUDIT_VIEW"
	PermReportView       = "REPORT_VIEW"
)

type PermissionDef struct {
	Name        string
	Description string
	Resource    string
	Action      string
}

// SystemPermissions is the catalogue installed by the seed command.
var SystemPermissions = []PermissionDef{
	{PermUserCreate, "Create users", "USER", "CREATE"},
	{PermUserRead, "View users", "USER", "READ"},
	{PermUserUpdate, "Update users", "USER", "UPDATE"},
	{PermUserDelete, "Delete users", "USER", "DELETE"},

	{PermEmployeeCreate, "Create employees", "EMPLOYEE", "CREATE"},
	{PermEmployeeRead, "View employees", "EMPLOYEE", "READ"},
	{PermEmployeeUpdate, "Update employees", "EMPLOYEE", "UPDATE"},
	{PermEmployeeDelete, "Delete employees", "EMPLOYEE", "DELETE"},

	{PermPharmacyUpdate, "Update pharmacy info", "PHARMACY", "UPDATE"},
	{PermPharmacyRead, "View pharmacy info", "PHARMACY", "READ"},

	{"PRODUCT_CREATE", "Create products", "PRODUCT", "CREATE"},
	{"PRODUCT_READ", "View products", "PRODUCT", "READ"},
	{"PRODUCT_UPDATE", "Update products", "PRODUCT", "UPDATE"},
	{"PRODUCT_DELETE", "Delete products", "PRODUCT", "DELETE"},

	{"INVENTORY_READ", "View inventory", "INVENTORY", "READ"},
	{"INVENTORY_UPDATE", "Update inventory", "INVENTORY", "UPDATE"},

	{"SALE_CREATE", "Create sales", "SALE", "CREATE"},
	{"SALE_READ", "View sales", "SALE", "READ"},
	{"SALE_UPDATE", "Update sales", "SALE", "UPDATE"},
	{"SALE_DELETE", "Delete sales", "SALE", "DELETE"},

	{"PURCHASE_CREATE", "Create purchases", "PURCHASE", "CREATE"},
	{"PURCHASE_READ", "View purchases", "PURCHASE", "READ"},
	{"PURCHASE_UPDATE", "Update purchases", "PURCHASE", "UPDATE"},
	{"PURCHASE_DELETE", "Delete purchases", "PURCHASE", "DELETE"},

	{PermReportView, "View reports", "REPORT", "READ"},

	{PermRoleCreate, "Create roles", "ROLE", "CREATE"},
	{PermRoleRead, "View roles", "ROLE", "READ"},
	{PermRoleUpdate, "Update roles", "ROLE", "UPDATE"},
	{PermRoleDelete, "Delete roles", "ROLE", "DELETE"},
	{PermPermissionCreate, "Create permissions", "PERMISSION", "CREATE"},
	{PermPermissionRead, "View permissions", "PERMISSION", "READ"},
	{PermAuditView, "View the audit trail", "AUDIT", "READ"},
}

type RoleDef struct {
	Name        string
	Description string
	// Permissions lists the granted permission names; nil on PLATFORM_ADMIN means all of them.
	Permissions []string
}

var SystemRoles = []RoleDef{
	{Name: RolePlatformAdmin, Description: "Platform Administrator"},
	{
		Name:        RolePharmacyManager,
		Description: "Pharmacy Manager",
		Permissions: []string{
			PermEmployeeCreate, PermEmployeeRead, PermEmployeeUpdate, PermEmployeeDelete,
			PermPharmacyUpdate, PermPharmacyRead, PermUserRead,
		},
	},
	{Name: RolePharmacyEmployee, Description: "Pharmacy Employee", Permissions: []string{}},
	{Name: RolePharmacyTrainee, Description: "Pharmacy Trainee", Permissions: []string{}},
}

// PermissionsFor resolves a system role's default grant against the catalogue.
func (r RoleDef) PermissionsFor() []string {
	if r.Permissions != nil {
		return r.Permissions
	}
	all := make([]string, 0, len(SystemPermissions))
	for _, p := range SystemPermissions {
		all = append(all, p.Name)
	}
	return all
}

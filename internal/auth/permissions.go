package auth

// Permission constants define the available permissions in the system.
// These are used for role-based access control (RBAC) to restrict access
// to specific resources and actions. Names follow the
// resource:action[:scope] convention; the ":own" scope limits the action
// to resources the subject authored.
const (
	// PermDashboardAccess allows viewing the management dashboard.
	PermDashboardAccess = "dashboard:access"

	// PermRoleCreate allows creating roles.
	PermRoleCreate = "role:create"
	// PermRoleUpdate allows renaming roles and editing their permission mappings.
	PermRoleUpdate = "role:update"
	// PermRoleDelete allows deleting roles.
	PermRoleDelete = "role:delete"

	// PermPermissionView allows listing permissions.
	PermPermissionView = "permission:view"
	// PermPermissionUpdate allows creating, editing and deleting permissions.
	PermPermissionUpdate = "permission:update"

	// PermUserGrantEditor allows granting the editor role to a user.
	PermUserGrantEditor = "user:grant:editor"
	// PermUserRevokeEditor allows revoking the editor role from a user.
	PermUserRevokeEditor = "user:revoke:editor"

	// PermJournalView allows reading editorials.
	PermJournalView = "journal:view"
	// PermJournalCreate allows creating editorials.
	PermJournalCreate = "journal:create"
	// PermJournalEditAny allows editing any editorial regardless of author.
	PermJournalEditAny = "journal:edit:any"
	// PermJournalEditOwn allows editing only editorials the subject authored.
	PermJournalEditOwn = "journal:edit:own"
	// PermJournalDeleteAny allows deleting any editorial regardless of author.
	PermJournalDeleteAny = "journal:delete:any"
	// PermJournalDeleteOwn allows deleting only editorials the subject authored.
	PermJournalDeleteOwn = "journal:delete:own"
)

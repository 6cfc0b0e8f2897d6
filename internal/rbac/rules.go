package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"attempt:create",
		"attempt:submit",
		"attempt:view-own",
		"progress:view-own",
		"book:init",
		"test:view",
	},
	"admin": {
		"*", // everything
	},
}

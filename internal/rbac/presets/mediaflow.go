package presets

import "mediaflow/internal/rbac"

const (
	RoleAdmin rbac.Role = "ADMIN"
	RoleMedia rbac.Role = "MEDIA"

	ResourceEvents   rbac.Resource = "events"
	ResourcePhotos   rbac.Resource = "photos"
	ResourceUsers    rbac.Resource = "users"
	ResourceChurches rbac.Resource = "churches"
	ResourceSettings rbac.Resource = "settings"

	ActionView     rbac.Action = "view"
	ActionCreate   rbac.Action = "create"
	ActionEdit     rbac.Action = "edit"
	ActionDelete   rbac.Action = "delete"
	ActionShare    rbac.Action = "share"
	ActionUpload   rbac.Action = "upload"
	ActionDownload rbac.Action = "download"
	ActionManage   rbac.Action = "manage"
)

var (
	EventsView     = rbac.NewPermission(ResourceEvents, ActionView)
	EventsCreate   = rbac.NewPermission(ResourceEvents, ActionCreate)
	EventsEdit     = rbac.NewPermission(ResourceEvents, ActionEdit)
	EventsDelete   = rbac.NewPermission(ResourceEvents, ActionDelete)
	EventsShare    = rbac.NewPermission(ResourceEvents, ActionShare)
	PhotosUpload   = rbac.NewPermission(ResourcePhotos, ActionUpload)
	PhotosDelete   = rbac.NewPermission(ResourcePhotos, ActionDelete)
	PhotosDownload = rbac.NewPermission(ResourcePhotos, ActionDownload)
	UsersView      = rbac.NewPermission(ResourceUsers, ActionView)
	UsersManage    = rbac.NewPermission(ResourceUsers, ActionManage)
	ChurchesView   = rbac.NewPermission(ResourceChurches, ActionView)
	ChurchesManage = rbac.NewPermission(ResourceChurches, ActionManage)
	SettingsView   = rbac.NewPermission(ResourceSettings, ActionView)
	SettingsManage = rbac.NewPermission(ResourceSettings, ActionManage)
)

// MediaFlow returns the role table for the media validation service.
// ADMIN holds everything; MEDIA holds all event and photo actions plus
// church viewing.
func MediaFlow() rbac.Config {
	return rbac.Config{
		Roles: []rbac.RoleDefinition{
			{Name: RoleAdmin, Level: 2},
			{Name: RoleMedia, Level: 1},
		},
		Resources: []rbac.Resource{
			ResourceEvents,
			ResourcePhotos,
			ResourceUsers,
			ResourceChurches,
			ResourceSettings,
		},
		Actions: []rbac.Action{
			ActionView,
			ActionCreate,
			ActionEdit,
			ActionDelete,
			ActionShare,
			ActionUpload,
			ActionDownload,
			ActionManage,
		},
		Permissions: []rbac.Permission{
			EventsView,
			EventsCreate,
			EventsEdit,
			EventsDelete,
			EventsShare,
			PhotosUpload,
			PhotosDelete,
			PhotosDownload,
			UsersView,
			UsersManage,
			ChurchesView,
			ChurchesManage,
			SettingsView,
			SettingsManage,
		},
		Capabilities: map[rbac.Role]map[rbac.Resource][]rbac.Action{
			RoleAdmin: {
				ResourceEvents:   {ActionView, ActionCreate, ActionEdit, ActionDelete, ActionShare},
				ResourcePhotos:   {ActionUpload, ActionDelete, ActionDownload},
				ResourceUsers:    {ActionView, ActionManage},
				ResourceChurches: {ActionView, ActionManage},
				ResourceSettings: {ActionView, ActionManage},
			},
			RoleMedia: {
				ResourceEvents:   {ActionView, ActionCreate, ActionEdit, ActionDelete, ActionShare},
				ResourcePhotos:   {ActionUpload, ActionDelete, ActionDownload},
				ResourceChurches: {ActionView},
			},
		},
	}
}

package domain

const (
	// Common keys
	KeyID     = "id"
	KeyName   = "name"
	KeyStatus = "status"
	KeyTags   = "tags" // Expects []string
	KeyRegion = "region"

	// Organization (business group) keys
	OrgParentIDKey           = "parent_id"
	OrgOwnerIDKey            = "owner_id"
	OrgClientIDKey           = "client_id"
	OrgCreateSubOrgsKey      = "create_suborgs"
	OrgCreateEnvironmentsKey = "create_environments"
	OrgGlobalDeploymentKey   = "global_deployment"
	OrgVCoresProductionKey   = "vcores_production"
	OrgVCoresSandboxKey      = "vcores_sandbox"
	OrgVCoresDesignKey       = "vcores_design"
	OrgStaticIPsKey          = "static_ips"
	OrgVPCsKey               = "vpcs"
	OrgLoadBalancerKey       = "load_balancer"
	OrgVPNsKey               = "vpns"

	// Environment keys
	EnvTypeKey     = "type"
	EnvClientIDKey = "client_id"

	// User keys
	UserUsernameKey  = "username"
	UserFirstNameKey = "first_name"
	UserLastNameKey  = "last_name"
	UserEmailKey     = "email"
	UserPasswordKey  = "password"
	UserEnabledKey   = "enabled"

	// Exchange asset keys
	AssetGroupIDKey     = "group_id"
	AssetIDKey          = "asset_id"
	AssetVersionKey     = "version"
	AssetTypeKey        = "type"
	AssetMainFileKey    = "main_file"
	AssetFilePathKey    = "file_path"
	AssetDescriptionKey = "description"
	AssetIconKey        = "icon" // Expects a content digest, not file bytes
	AssetIconPathKey    = "icon_path"

	// API instance keys
	APIAssetIDKey       = "asset_id"
	APIAssetVersionKey  = "asset_version"
	APIInstanceLabelKey = "instance_label"
	APIURIKey           = "uri"
	APIProxyURIKey      = "proxy_uri"
	APIDeprecatedKey    = "deprecated"

	// Policy keys
	PolicyAPIInstanceKey = "api_instance_id"
	PolicyAssetIDKey     = "asset_id"
	PolicyVersionKey     = "policy_version"
	PolicyGroupIDKey     = "group_id"
	PolicyConfigKey      = "config" // Expects a JSON object
	PolicyPointcutKey    = "pointcut"
	PolicyDisabledKey    = "disabled"

	// Contract keys
	ContractAPIInstanceKey = "api_instance_id"
	ContractApplicationKey = "application_id"

	// MQ destination keys
	MQTypeKey            = "type"
	MQEncryptedKey       = "encrypted"
	MQFIFOKey            = "fifo"
	MQDefaultTTLKey      = "default_ttl"
	MQDefaultLockTTLKey  = "default_lock_ttl"
	MQDeadLetterQueueKey = "dead_letter_queue"
	MQMaxDeliveriesKey   = "max_deliveries"
	MQBoundQueuesKey     = "bound_queues" // Expects []string, exchange type only

	// CloudHub application keys
	AppRuntimeKey          = "runtime"
	AppWorkersKey          = "workers"
	AppWorkerSizeKey       = "worker_size"
	AppPersistentQueuesKey = "persistent_queues"
	AppPQEncryptedKey      = "persistent_queues_encrypted"
	AppStaticIPsEnabledKey = "static_ips_enabled"
	AppObjectStoreV1Key    = "object_store_v1"
	AppAutoRestartKey      = "auto_restart"
	AppPropertiesKey       = "properties" // Expects map[string]string
	AppFileKey             = "file"
	AppURLKey              = "url"

	// Design Center project keys
	ProjectIDKey           = "project_id"
	ProjectTypeKey         = "type"
	ProjectFragmentTypeKey = "fragment_type"
	ProjectDirKey          = "project_dir"
	ProjectMainKey         = "main"
	ProjectAPIVersionKey   = "api_version"
)

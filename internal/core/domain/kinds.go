package domain

type ResourceKind string

const (
	KindOrganization        ResourceKind = "organization"
	KindEnvironment         ResourceKind = "environment"
	KindUser                ResourceKind = "user"
	KindExchangeAsset       ResourceKind = "exchange-asset"
	KindAPIInstance         ResourceKind = "api-instance"
	KindPolicy              ResourceKind = "policy"
	KindAutomatedPolicy     ResourceKind = "automated-policy"
	KindContract            ResourceKind = "contract"
	KindMQDestination       ResourceKind = "mq-destination"
	KindCloudHubApplication ResourceKind = "cloudhub-application"
	KindDesignProject       ResourceKind = "design-project"
)

func (rk ResourceKind) String() string {
	return string(rk)
}

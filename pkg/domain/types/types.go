package types

// Version is the application version, overridden at build time via ldflags
var Version = "dev"

// ServiceName identifies this service in logs and health responses
const ServiceName = "templatebot-aide"

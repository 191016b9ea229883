// Package api implements the runits HTTP API.
//
// All routes live under /api/v1:
//
//	GET    /health                 registry and dependency status
//	GET    /metrics                Prometheus exposition
//	GET    /units[?dimension=]     registered units
//	GET    /prefixes               registered prefixes
//	GET    /systems                unit systems
//	GET    /systems/{name}         one unit system
//	PUT    /systems/active         switch the active system
//	POST   /parse                  {"expression": "9.81 m/s^2"}
//	POST   /convert                {"quantity": "1 mi", "target": "km"} or {"system": "SI"}
//	GET    /custom-units           stored custom units
//	POST   /custom-units           define or redefine a custom unit
//	DELETE /custom-units/{name}    remove a custom unit
//	POST   /registry/reload        rebuild the registry from all sources
//	GET    /audit                  registry change trail (?action= &unit= &limit= &offset=)
//
// Errors are {"status", "code", "message"}; conversion failures carry the
// error code of their kind (unknown_unit, incompatible_dimensions, ...).
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api

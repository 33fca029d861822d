// Package handlers implements the gateway HTTP endpoints.
//
// Each handler implements speakerhub.Handler and receives its dependencies
// through its constructor:
//
//	app := speakerhub.New(
//	    speakerhub.WithErrorHandler(middlewares.ErrorHandler(log)),
//	    speakerhub.WithHandlers(
//	        handlers.NewInfo(cfg.App.Name, cfg.App.Version),
//	        handlers.NewAuth(directory, tokens),
//	        handlers.NewVendor(provider, tokens,
//	            handlers.WithDefaultAccount(cfg.Vendor.Username, cfg.Vendor.Password),
//	        ),
//	        handlers.NewDevice(provider, tokens),
//	    ),
//	)
//
// Vendor and device endpoints answer with the envelope
// {"success", "message", "data"}. Failures are returned as errors and rendered
// by middlewares.ErrorHandler. A missing vendor session is reported as 403 with
// code "vendor_not_connected"; an unknown device selector is a 400.
package handlers

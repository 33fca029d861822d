// Package console is the session orchestrator behind speakerctl.
//
// A [Console] ties together the persisted [session.Session], the gateway
// client, the vendor session tracker and the device directory, and exposes
// the two-stage login flow:
//
//	Unauthenticated --Login--> SystemOnly --VendorLogin or Sync--> FullyConnected
//
// Login stores the system token pair and then syncs, so an already connected
// vendor account is picked up without a second login. Logout tries a vendor
// logout first and always drops the system tokens, even if that fails. When
// the refresh coordinator gives up on the system session, the console falls
// back to Unauthenticated and forgets the vendor indicator.
//
// Device commands resolve their target from an explicit selector or the
// selected device and are refused with [ErrVendorNotConnected] before any
// request when the vendor account is logged out or nothing can be targeted.
//
//	sess, _ := session.Open(ctx, session.NewFileStore(path))
//	con := console.New(sess, apiclient.New(server, sess))
//	if _, err := con.Login(ctx, "admin", password); err != nil {
//	    return err
//	}
//	_, err := con.SetVolume(ctx, "", 30)
package console

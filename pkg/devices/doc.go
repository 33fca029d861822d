// Package devices keeps the console's view of the vendor device list and
// the selected device.
//
// [Directory.Fetch] loads the list through a [Lister]. Concurrent calls join
// the fetch already in flight, so rapid refreshes cost one request. The list
// is replaced as a whole, and only when its fingerprint (the ordered
// id/alias/name/hardware tuple) changed.
//
// After every successful fetch the selection is repaired: if the selected
// device disappeared the first device is selected, and an empty list clears
// the selection. The device count is also handed to an [Indicator] (the
// vendor session tracker) so the vendor login state follows the list.
//
// Commands address devices with a selector string. [Directory.ResolveSelector]
// returns the alias, then the name, then the id. Until the list has been
// fetched the persisted selection resolves to its id. An empty selector means
// no valid target:
//
//	selector := dir.ResolveSelector(nil)
//	if selector == "" {
//	    return ErrVendorNotConnected
//	}
package devices

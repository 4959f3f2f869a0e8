// Package journal reads and writes the recovery journal left behind when a
// commit stops partway. The journal lists which manifests were rewritten and
// which still hold their old version so the operator can reconcile by hand.
package journal

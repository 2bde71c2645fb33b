package cli

// Message constants
const (
	msgRootShort = "Bind file extensions to your applications"
	msgRootLong  = `dibs records which application should open each file extension and
keeps the operating system's defaults in line with that record. Bindings
live in a local store; 'dibs sync' reconciles the OS against it.`

	msgSetShort = "Bind an extension to an application"
	msgSetLong  = `Set records a binding between a file extension and an application and
applies it as the OS default. The store is updated first; if applying to
the OS fails, the binding is kept and 'dibs sync' will retry it.`
	msgSetExample = `  # Open .md files with Typora
  dibs set md /Applications/Typora.app

  # Preview without changing anything
  dibs set md /Applications/Typora.app --dry-run`

	msgForgetShort = "Remove a binding"
	msgForgetLong  = `Forget retires the binding for an extension and restores the previous
OS default where the platform allows it. Forgetting an extension that
was never bound is an error.`
	msgForgetExample = `  dibs forget md`

	msgSlapShort = "Legacy spelling of set"
	msgSlapLong  = `Slap is the historical name for binding an extension. It requires the
--set flag and behaves exactly like 'dibs set'.`

	msgChopShort = "Legacy spelling of forget"
	msgChopLong  = `Chop is the historical name for removing a binding. It requires the
--forget flag and behaves exactly like 'dibs forget'.`

	msgSyncShort = "Reconcile OS defaults with the store"
	msgSyncLong  = `Sync walks every active binding, compares it to what the OS reports,
and reapplies the ones that drifted. Failures are reported per binding
and never stop the rest; rerun sync to retry what is still out of date.`
	msgSyncExample = `  # Apply everything that drifted
  dibs sync

  # See what would change
  dibs sync --dry-run`

	msgStatusShort = "Show bindings and their OS state"

	msgOfferShort       = "Manage binding offers"
	msgOfferLong        = `Offers are named proposals for bindings that can be accepted or rejected later.`
	msgOfferMakeShort   = "Create an offer for an existing binding"
	msgOfferAcceptShort = "Accept an offer"
	msgOfferRejectShort = "Reject an offer"

	msgExportShort = "Write bindings to stdout"
	msgExportLong  = `Export emits the binding set in a portable format. The xml format is
the Windows DefaultAppAssociations schema consumed by Dism and group
policy; yaml and json are plain dumps.`

	msgImportShort = "Create pending bindings from an associations file"
	msgImportLong  = `Import-assoc reads a Windows DefaultAppAssociations XML file and
records a pending binding for each association. Run 'dibs sync' after
pointing the bindings at applications with 'dibs set'.`

	msgGenconfigShort = "Print the default configuration"

	msgDocsShort = "Show documentation topics"
	msgDocsLong  = `Docs renders the built-in manual. Without arguments it lists the
available topics.`

	msgVersionShort = "Print version information"
)

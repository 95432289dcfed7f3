package cmd

import "context"

// EmitCmd emits an event and prints its new snapshot.
type EmitCmd struct {
	Node   string `short:"n" long:"node" description:"node name" required:"yes"`
	Event  string `short:"e" long:"event" description:"event name" required:"yes"`
	Inline string `short:"i" long:"input" description:"inline argument (JSON or plain string)"`
	File   string `long:"file" description:"path to a JSON argument file (use - for stdin)"`
}

func (c *EmitCmd) Execute(_ []string) error {
	arg, err := readInput(c.Inline, c.File)
	if err != nil {
		return err
	}
	svc, err := serviceSingleton()
	if err != nil {
		return err
	}
	if err := svc.Emit(context.Background(), c.Node, c.Event, arg); err != nil {
		return err
	}
	tk, err := svc.Node(c.Node)
	if err != nil {
		return err
	}
	if event := tk.LocalEvent(c.Event); event != nil {
		return printJSON(event.Snapshot())
	}
	return nil
}

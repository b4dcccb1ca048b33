package pipeline

import (
	"reflect"
	"strings"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/askiada/go-typed-pipeline/pkg/component"
	"github.com/askiada/go-typed-pipeline/pkg/pipeline/model"
)

// splitAddress splits "component.socket". The socket is empty when omitted.
func splitAddress(address string) (string, string) {
	name, socket, _ := strings.Cut(address, ".")
	return name, socket
}

// compatible reports whether a value of the sender type can be given to the receiver.
// A nil type accepts anything.
func compatible(sender, receiver reflect.Type) bool {
	if sender == nil || receiver == nil {
		return true
	}

	return sender.AssignableTo(receiver)
}

// Connect links an output socket to an input socket. Both are addressed as "component.socket";
// the socket can be omitted when there is a single candidate.
func (p *Pipeline) Connect(sender, receiver string) error {
	senderName, senderSocketName := splitAddress(sender)
	receiverName, receiverSocketName := splitAddress(receiver)

	senderComponent, ok := p.components[senderName]
	if !ok {
		return errors.Wrapf(ErrComponentNotFound, "sender %s", senderName)
	}
	receiverComponent, ok := p.components[receiverName]
	if !ok {
		return errors.Wrapf(ErrComponentNotFound, "receiver %s", receiverName)
	}

	outputs, err := senderComponent.OutputSockets()
	if err != nil {
		return errors.Wrapf(err, "unable to read outputs of %s", senderName)
	}
	inputs := receiverComponent.InputSockets()

	outputSocket, err := p.outputSocket(senderName, senderSocketName, outputs)
	if err != nil {
		return err
	}
	inputSocket, err := p.inputSocket(receiverName, receiverSocketName, inputs, outputSocket)
	if err != nil {
		return err
	}

	if len(inputSocket.Senders) > 0 {
		return errors.Wrapf(ErrSocketAlreadyConnected, "%s.%s is connected to %s", receiverName, inputSocket.Name, inputSocket.Senders[0])
	}
	if !compatible(outputSocket.Type, inputSocket.Type) {
		return errors.Wrapf(ErrIncompatibleSockets, "%s.%s (%v) to %s.%s (%v)",
			senderName, outputSocket.Name, outputSocket.Type, receiverName, inputSocket.Name, inputSocket.Type)
	}

	err = p.graph.AddEdge(senderName, receiverName)
	if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
		return errors.Wrapf(err, "unable to connect %s to %s", senderName, receiverName)
	}

	conn := &model.ConnectionInfo{
		Sender:         senderName,
		SenderSocket:   outputSocket.Name,
		Receiver:       receiverName,
		ReceiverSocket: inputSocket.Name,
	}
	for _, opt := range p.opts {
		err := opt.PrepareConnection(conn)
		if err != nil {
			return errors.Wrap(err, "unable to run prepare connection function")
		}
	}

	outputSocket.Receivers = append(outputSocket.Receivers, receiverName+"."+inputSocket.Name)
	inputSocket.Senders = append(inputSocket.Senders, senderName+"."+outputSocket.Name)
	p.connections = append(p.connections, conn)
	p.logger.Debug("components connected",
		zap.String("sender", senderName+"."+outputSocket.Name),
		zap.String("receiver", receiverName+"."+inputSocket.Name),
	)

	return nil
}

func (p *Pipeline) outputSocket(name, socket string, outputs component.OutputSockets) (*component.OutputSocket, error) {
	if socket != "" {
		s, ok := outputs[socket]
		if !ok {
			return nil, errors.Wrapf(ErrSocketNotFound, "%s has no output %s, available: %v", name, socket, outputs.Names())
		}

		return s, nil
	}
	if len(outputs) != 1 {
		return nil, errors.Wrapf(ErrAmbiguousSocket, "%s has outputs %v", name, outputs.Names())
	}

	return outputs[outputs.Names()[0]], nil
}

func (p *Pipeline) inputSocket(name, socket string, inputs component.InputSockets, from *component.OutputSocket) (*component.InputSocket, error) {
	if socket != "" {
		s, ok := inputs[socket]
		if !ok {
			return nil, errors.Wrapf(ErrSocketNotFound, "%s has no input %s, available: %v", name, socket, inputs.Names())
		}

		return s, nil
	}

	candidates := lo.Filter(inputs.Names(), func(n string, _ int) bool {
		return len(inputs[n].Senders) == 0 && compatible(from.Type, inputs[n].Type)
	})
	if len(candidates) != 1 {
		return nil, errors.Wrapf(ErrAmbiguousSocket, "%s has %d free inputs matching %s", name, len(candidates), from.Name)
	}

	return inputs[candidates[0]], nil
}

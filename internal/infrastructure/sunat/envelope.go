package sunat

import "encoding/xml"

const (
	soapEnvNS  = "http://schemas.xmlsoap.org/soap/envelope/"
	serviceNS  = "http://service.sunat.gob.pe"
	wsseNS     = "http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-wssecurity-secext-1.0.xsd"
	contentXML = "text/xml; charset=utf-8"
)

// request side, prefixes are written literally

type requestEnvelope struct {
	XMLName xml.Name      `xml:"soapenv:Envelope"`
	SoapEnv string        `xml:"xmlns:soapenv,attr"`
	Ser     string        `xml:"xmlns:ser,attr"`
	Wsse    string        `xml:"xmlns:wsse,attr"`
	Header  requestHeader `xml:"soapenv:Header"`
	Body    requestBody   `xml:"soapenv:Body"`
}

type requestHeader struct {
	Security struct {
		UsernameToken struct {
			Username string `xml:"wsse:Username"`
			Password string `xml:"wsse:Password"`
		} `xml:"wsse:UsernameToken"`
	} `xml:"wsse:Security"`
}

type requestBody struct {
	SendBill    *sendRequest `xml:"ser:sendBill,omitempty"`
	SendSummary *sendRequest `xml:"ser:sendSummary,omitempty"`
}

type sendRequest struct {
	FileName    string `xml:"fileName"`
	ContentFile string `xml:"contentFile"`
}

// response side, matched by local name

type responseEnvelope struct {
	Body struct {
		Fault *struct {
			Code   string `xml:"faultcode"`
			String string `xml:"faultstring"`
		} `xml:"Fault"`
		SendBill *struct {
			ApplicationResponse string `xml:"applicationResponse"`
		} `xml:"sendBillResponse"`
		SendSummary *struct {
			Ticket string `xml:"ticket"`
		} `xml:"sendSummaryResponse"`
	} `xml:"Body"`
}

func newRequestEnvelope(username, password string) *requestEnvelope {
	env := &requestEnvelope{
		SoapEnv: soapEnvNS,
		Ser:     serviceNS,
		Wsse:    wsseNS,
	}
	env.Header.Security.UsernameToken.Username = username
	env.Header.Security.UsernameToken.Password = password

	return env
}
